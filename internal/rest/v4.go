package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/civigo-io/civigo/pkg/civi"
)

// v4Path is the ajax endpoint prefix for APIv4 calls.
const v4Path = "/civicrm/ajax/api4"

// V4 is the HTTP transport for CiviCRM APIv4. Each call is posted to
// <base>/civicrm/ajax/api4/<entity>/<action> with the JSON-encoded
// structured parameters in a single form field named "params" and the API
// key in an X-Civi-Auth bearer header.
type V4 struct {
	client *Client
	apiKey string
}

// NewV4 creates the APIv4 REST transport.
func NewV4(client *Client, apiKey string) *V4 {
	return &V4{
		client: client,
		apiKey: apiKey,
	}
}

// Perform implements civi.Transport.
func (t *V4) Perform(ctx context.Context, entity, action string, params civi.Params) ([]byte, error) {
	if params == nil {
		params = civi.Params{}
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, &civi.TransportError{Op: "encode", Err: err}
	}

	form := url.Values{}
	form.Set("params", string(encoded))

	header := http.Header{}
	header.Set("X-Civi-Auth", "Bearer "+t.apiKey)

	path := fmt.Sprintf("%s/%s/%s", v4Path, url.PathEscape(entity), url.PathEscape(action))

	return t.client.PostForm(ctx, path, form, header)
}
