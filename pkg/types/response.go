// Package types holds the JSON envelopes shared by every foodorder endpoint.
package types

// SuccessEnvelope wraps a 2xx payload: store lists, menus, cart views and
// checkout results all arrive under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client facing error. Code is one of the pkg/errors codes,
// so the storefront can tell an INVALID_PRODUCT cart line from a bad field.
// Details carries per-field messages for validation failures only.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
