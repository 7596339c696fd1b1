package civiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civigo-io/civigo/pkg/civi"
	"github.com/civigo-io/civigo/pkg/civiclient"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *civi.Config
		wantErr error
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: civi.ErrConfigRequired,
		},
		{
			name:    "unknown version",
			config:  &civi.Config{BaseURL: "https://example.org", APIKey: "k", Version: "5"},
			wantErr: civi.ErrUnknownVersion,
		},
		{
			name:    "unknown transport",
			config:  &civi.Config{BaseURL: "https://example.org", APIKey: "k", Transport: "carrier-pigeon"},
			wantErr: civi.ErrUnknownTransport,
		},
		{
			name:    "rest without base url",
			config:  &civi.Config{APIKey: "k"},
			wantErr: civi.ErrBaseURLRequired,
		},
		{
			name:    "rest without api key",
			config:  &civi.Config{BaseURL: "https://example.org"},
			wantErr: civi.ErrAPIKeyRequired,
		},
		{
			name:    "rest v3 without site key",
			config:  &civi.Config{BaseURL: "https://example.org", APIKey: "k", Version: "3"},
			wantErr: civi.ErrSiteKeyRequired,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := civiclient.New(tt.config)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	t.Run("defaults to rest v4", func(t *testing.T) {
		t.Parallel()

		api, err := civiclient.New(&civi.Config{BaseURL: "https://example.org", APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "4", api.Version().Name())
	})

	t.Run("accepts a v-prefixed version tag", func(t *testing.T) {
		t.Parallel()

		api, err := civiclient.New(&civi.Config{
			BaseURL: "https://example.org",
			APIKey:  "k",
			SiteKey: "s",
			Version: "v3",
		})
		require.NoError(t, err)
		assert.Equal(t, "3", api.Version().Name())
	})

	t.Run("console transport needs no credentials", func(t *testing.T) {
		t.Parallel()

		api, err := civiclient.NewConsoleV4("cv", "/var/www/civicrm")
		require.NoError(t, err)
		assert.Equal(t, "4", api.Version().Name())
	})
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/civicrm/ajax/api4/Contact/get", request.URL.Path)
		_, _ = writer.Write([]byte(`[{"id": 1, "contact_type": "Individual"}]`))
	}))
	defer server.Close()

	api, err := civiclient.NewRestV4(server.URL, "test-key")
	require.NoError(t, err)

	result, err := api.Entity("Contact").Invoke(context.Background(), "get", civi.Params{
		"contact_type": "Individual",
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, float64(1), result[0]["id"])
}
