package rest

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/civigo-io/civigo/pkg/civi"
)

// v3Path is the fixed ajax endpoint for APIv3 calls.
const v3Path = "/civicrm/ajax/rest"

// V3 is the HTTP transport for CiviCRM APIv3. Each call is posted to the
// fixed rest endpoint with the credentials, entity, and action as individual
// form fields and the JSON-encoded flat parameters in the "json" field.
type V3 struct {
	client  *Client
	apiKey  string
	siteKey string
}

// NewV3 creates the APIv3 REST transport.
func NewV3(client *Client, apiKey, siteKey string) *V3 {
	return &V3{
		client:  client,
		apiKey:  apiKey,
		siteKey: siteKey,
	}
}

// Perform implements civi.Transport.
func (t *V3) Perform(ctx context.Context, entity, action string, params civi.Params) ([]byte, error) {
	encoded, err := json.Marshal(withSequentialDefault(params))
	if err != nil {
		return nil, &civi.TransportError{Op: "encode", Err: err}
	}

	form := url.Values{}
	form.Set("api_key", t.apiKey)
	form.Set("key", t.siteKey)
	form.Set("entity", entity)
	form.Set("action", action)
	form.Set("json", string(encoded))

	return t.client.PostForm(ctx, v3Path, form, nil)
}

// withSequentialDefault applies the APIv3 transport default sequential=1
// unless the caller chose otherwise. The caller's map is left untouched.
func withSequentialDefault(params civi.Params) civi.Params {
	if _, ok := params["sequential"]; ok {
		return params
	}

	out := make(civi.Params, len(params)+1)
	for key, value := range params {
		out[key] = value
	}

	out["sequential"] = 1

	return out
}
