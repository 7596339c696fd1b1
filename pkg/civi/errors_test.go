package civi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyResponse(t *testing.T) {
	t.Parallel()

	t.Run("plain json passes through decoded", func(t *testing.T) {
		t.Parallel()

		decoded, err := ClassifyResponse([]byte(`[{"id": 1}]`))
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"id": float64(1)}}, decoded)
	})

	t.Run("v3 is_error envelope classifies as api error", func(t *testing.T) {
		t.Parallel()

		_, err := ClassifyResponse([]byte(`{"is_error": 1, "error_message": "ERROR: Invalid credential"}`))
		require.Error(t, err)
		assert.True(t, IsAPIError(err))

		apiErr := &APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "ERROR: Invalid credential", apiErr.Message)
		assert.NotNil(t, apiErr.Payload)
	})

	t.Run("v4 error_code envelope classifies as api error", func(t *testing.T) {
		t.Parallel()

		_, err := ClassifyResponse([]byte(`{"error_code": "invalid-entity", "error_message": "no such entity"}`))
		require.Error(t, err)
		assert.True(t, IsAPIError(err))

		apiErr := &APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid-entity", apiErr.Code)
		assert.Equal(t, "no such entity", apiErr.Message)
	})

	t.Run("numeric error code is rendered without decimals", func(t *testing.T) {
		t.Parallel()

		_, err := ClassifyResponse([]byte(`{"is_error": 1, "error_code": 2001}`))
		require.Error(t, err)

		apiErr := &APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "2001", apiErr.Code)
	})

	t.Run("false is_error is a success", func(t *testing.T) {
		t.Parallel()

		decoded, err := ClassifyResponse([]byte(`{"is_error": 0, "values": []}`))
		require.NoError(t, err)
		assert.NotNil(t, decoded)
	})

	t.Run("non-json classifies as invalid response with raw text", func(t *testing.T) {
		t.Parallel()

		raw := "<html>Fatal error</html>"

		_, err := ClassifyResponse([]byte(raw))
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))

		invalid := &InvalidResponseError{}
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, raw, invalid.Raw)
		assert.Contains(t, err.Error(), raw)
	})

	t.Run("empty body classifies as invalid response", func(t *testing.T) {
		t.Parallel()

		_, err := ClassifyResponse([]byte("  \n"))
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name: "full context",
			err: &APIError{
				Entity:  "Contact",
				Action:  "get",
				Code:    "invalid-entity",
				Message: "no such entity",
			},
			expected: "API call failed: Contact.get: no such entity (code: invalid-entity)",
		},
		{
			name:     "message only",
			err:      &APIError{Message: "Invalid credential"},
			expected: "API call failed: Invalid credential",
		},
		{
			name:     "code only",
			err:      &APIError{Code: "2001"},
			expected: "API call failed: code: 2001",
		},
		{
			name:     "nothing known",
			err:      &APIError{},
			expected: "API call failed: unknown API error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()

	err := &TransportError{
		Op:         "post",
		StatusCode: 503,
		Body:       "Service Unavailable",
		Err:        ErrRequestNotSucceeded,
	}

	assert.Contains(t, err.Error(), "transport error during post")
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Contains(t, err.Error(), "Service Unavailable")
	assert.ErrorIs(t, err, ErrRequestNotSucceeded)
}

func TestErrorKindHelpers(t *testing.T) {
	t.Parallel()

	transportErr := fmt.Errorf("wrapped: %w", &TransportError{Op: "run", Err: errors.New("exit status 127")})
	invalidErr := fmt.Errorf("wrapped: %w", &InvalidResponseError{Raw: "garbage"})
	apiErr := fmt.Errorf("wrapped: %w", &APIError{Message: "nope"})

	assert.True(t, IsTransportError(transportErr))
	assert.False(t, IsTransportError(invalidErr))

	assert.True(t, IsInvalidResponse(invalidErr))
	assert.False(t, IsInvalidResponse(apiErr))

	assert.True(t, IsAPIError(apiErr))
	assert.False(t, IsAPIError(transportErr))
}
