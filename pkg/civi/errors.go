package civi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrMissingValues       = errors.New("response envelope has no values key")
	ErrUnexpectedShape     = errors.New("response has an unexpected shape")
	ErrEntityNameRequired  = errors.New("entity name is required")
	ErrActionNameRequired  = errors.New("action name is required")
	ErrActionNotBound      = errors.New("action is not bound to an entity")
	ErrVersionRequired     = errors.New("version descriptor is required")
	ErrTransportRequired   = errors.New("transport is required")
	ErrUnknownEntity       = errors.New("unknown entity")
	ErrUnknownAction       = errors.New("unknown action")
	ErrConfigRequired      = errors.New("config is required")
	ErrBaseURLRequired     = errors.New("base URL is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrSiteKeyRequired     = errors.New("site key is required for APIv3")
	ErrUnknownVersion      = errors.New("unknown API version")
	ErrUnknownTransport    = errors.New("unknown transport kind")
	ErrEmptyResponse       = errors.New("empty response body")
	ErrRequestNotSucceeded = errors.New("request did not succeed")
)

// TransportError reports that the remote endpoint or local command could not
// be invoked at all, or failed outside the API's own error conventions
// (connection refused, non-2xx status, non-zero exit without a recognizable
// embedded API error). It is never retried by the library.
type TransportError struct {
	// Op names the failed transport operation, e.g. "post" or "run".
	Op string
	// StatusCode is the HTTP status, when the transport is HTTP and a
	// response was received. Zero otherwise.
	StatusCode int
	// Body holds the raw reply body or stderr text, when available.
	Body string
	// Err is the underlying cause, when available.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := "transport error"
	if e.Op != "" {
		msg = fmt.Sprintf("transport error during %s", e.Op)
	}

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(e.Body))
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidResponseError reports a transport reply whose content is not
// parseable JSON, or is JSON but lacks the expected envelope. Raw preserves
// the original payload verbatim for diagnosis.
type InvalidResponseError struct {
	// Raw is the offending payload: the unparseable text, or the decoded
	// value that lacked the expected envelope.
	Raw any
	// Err is the underlying cause (a JSON decode error, or one of the
	// shape sentinels).
	Err error
}

// Error implements the error interface.
func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response: %v: %s", e.Err, renderRaw(e.Raw))
	}

	return fmt.Sprintf("invalid response: %s", renderRaw(e.Raw))
}

// Unwrap returns the underlying cause.
func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// APIError reports that the remote API understood the request but rejected
// it: invalid entity or action name, invalid field, invalid credential, or a
// business-rule violation.
type APIError struct {
	// Entity and Action give the request context, when known.
	Entity string
	Action string
	// Code is the error code: error_code for APIv4, the numeric (or
	// textual) error_code field for APIv3. May be empty.
	Code string
	// Message is the error message reported by the API. May be empty.
	Message string
	// Payload is the decoded error envelope, when the error arrived as
	// JSON. Nil when the error was extracted from a side channel.
	Payload map[string]any
}

// Error renders a diagnostic combining whatever of code, message, and
// request context is available.
func (e *APIError) Error() string {
	var parts []string

	if e.Entity != "" || e.Action != "" {
		parts = append(parts, fmt.Sprintf("%s.%s", e.Entity, e.Action))
	}

	switch {
	case e.Message != "" && e.Code != "":
		parts = append(parts, fmt.Sprintf("%s (code: %s)", e.Message, e.Code))
	case e.Message != "":
		parts = append(parts, e.Message)
	case e.Code != "":
		parts = append(parts, fmt.Sprintf("code: %s", e.Code))
	default:
		parts = append(parts, "unknown API error")
	}

	return "API call failed: " + strings.Join(parts, ": ")
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	target := &TransportError{}

	return errors.As(err, &target)
}

// IsInvalidResponse checks if the error is an invalid-response failure.
func IsInvalidResponse(err error) bool {
	target := &InvalidResponseError{}

	return errors.As(err, &target)
}

// IsAPIError checks if the error is an API-level rejection.
func IsAPIError(err error) bool {
	target := &APIError{}

	return errors.As(err, &target)
}

// ClassifyResponse decodes a transport's raw text output and inspects it
// for the error signals of both API versions. It returns the decoded value
// on success, an *InvalidResponseError when the payload is not JSON, and an
// *APIError when the payload carries a truthy is_error field (the APIv3
// convention) or an error_code field (the APIv4 convention).
func ClassifyResponse(raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &InvalidResponseError{Raw: string(raw), Err: ErrEmptyResponse}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &InvalidResponseError{Raw: string(raw), Err: err}
	}

	envelope, ok := decoded.(map[string]any)
	if !ok {
		return decoded, nil
	}

	if apiErr := errorFromEnvelope(envelope); apiErr != nil {
		return nil, apiErr
	}

	return decoded, nil
}

// errorFromEnvelope extracts an APIError from a decoded mapping, or returns
// nil when the mapping carries no error signal.
func errorFromEnvelope(envelope map[string]any) *APIError {
	isError := truthy(envelope["is_error"])

	_, hasErrorCode := envelope["error_code"]
	if !isError && !hasErrorCode {
		return nil
	}

	return &APIError{
		Code:    stringify(envelope["error_code"]),
		Message: stringify(envelope["error_message"]),
		Payload: envelope,
	}
}

// truthy applies the APIv3 is_error convention, where the flag may arrive
// as a JSON number, bool, or string.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != "" && v != "0"
	default:
		return false
	}
}

// stringify renders a decoded JSON scalar for diagnostics. JSON numbers are
// rendered without a trailing ".0" where they are integral.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderRaw keeps diagnostics readable for both string payloads and decoded
// values.
func renderRaw(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", raw)
}
