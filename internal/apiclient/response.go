package apiclient

import (
	"encoding/json"
	"fmt"
)

// Kind classifies the outcome of a request.
type Kind string

const (
	KindOK           Kind = "ok"
	KindValidation   Kind = "validation"   // rejected before any network call
	KindUnauthorized Kind = "unauthorized" // no token, or backend answered 401/403
	KindNotFound     Kind = "not_found"
	KindHTTP         Kind = "http"      // any other non-2xx status
	KindNetwork      Kind = "network"   // no response at all
	KindCancelled    Kind = "cancelled" // the caller's context ended first
	KindInvalid      Kind = "invalid"   // request could not be encoded or response decoded
)

// StatusNone is reported when no HTTP response was received.
const StatusNone = 0

// Response is the envelope every call resolves to. Success is true only for
// 2xx statuses, so callers branch once on it.
type Response struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Kind    Kind   `json:"kind"`

	// Raw is the undecoded response body.
	Raw []byte `json:"-"`
}

// Failure builds an envelope for a request that got no HTTP response.
func Failure(kind Kind, message string) Response {
	return Response{Status: StatusNone, Kind: kind, Message: message}
}

// Decode unmarshals the whole response body into v.
func (r Response) Decode(v any) error {
	if len(r.Raw) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DecodeField unmarshals one top-level field of an object body into v. It
// reports false when the field is absent or null.
func (r Response) DecodeField(name string, v any) (bool, error) {
	if len(r.Raw) == 0 {
		return false, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Raw, &obj); err != nil {
		return false, nil
	}

	field, ok := obj[name]
	if !ok || string(field) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(field, v); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", name, err)
	}
	return true, nil
}

// Err converts a failed envelope into an error for callers that want one.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	if r.Status == StatusNone {
		return fmt.Errorf("%s", r.Message)
	}
	return fmt.Errorf("%s (status %d)", r.Message, r.Status)
}
