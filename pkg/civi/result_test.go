package civi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResult(t *testing.T) {
	t.Parallel()

	t.Run("bare sequence is returned unchanged", func(t *testing.T) {
		t.Parallel()

		result, err := NormalizeResult([]any{
			map[string]any{"id": float64(1)},
			map[string]any{"id": float64(2)},
		})
		require.NoError(t, err)
		assert.Equal(t, Result{
			{"id": float64(1)},
			{"id": float64(2)},
		}, result)
	})

	t.Run("values envelope is unwrapped", func(t *testing.T) {
		t.Parallel()

		result, err := NormalizeResult(map[string]any{
			"values":  []any{map[string]any{"id": float64(1)}},
			"count":   float64(1),
			"version": float64(4),
		})
		require.NoError(t, err)
		assert.Equal(t, Result{{"id": float64(1)}}, result)
	})

	t.Run("id-keyed values mapping keeps records intact", func(t *testing.T) {
		t.Parallel()

		result, err := NormalizeResult(map[string]any{
			"is_error": float64(0),
			"count":    float64(2),
			"values": map[string]any{
				"10": map[string]any{"id": "10", "sort_name": "Doe, Jane"},
				"9":  map[string]any{"id": "9", "sort_name": "Doe, John"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, Result{
			{"id": "9", "sort_name": "Doe, John"},
			{"id": "10", "sort_name": "Doe, Jane"},
		}, result)
	})

	t.Run("empty sequence yields empty result", func(t *testing.T) {
		t.Parallel()

		result, err := NormalizeResult([]any{})
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("mapping without values is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeResult(map[string]any{"count": float64(0)})
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
		assert.ErrorIs(t, err, ErrMissingValues)
	})

	t.Run("scalar is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeResult("ok")
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
		assert.ErrorIs(t, err, ErrUnexpectedShape)
	})

	t.Run("sequence of scalars is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeResult([]any{"not-a-record"})
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
	})
}
