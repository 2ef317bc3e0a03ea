// Package httpx holds the JSON request and response helpers shared by HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxJSONBody caps decoded request bodies.
const MaxJSONBody = 1 << 20

// Common client-facing messages.
const (
	MsgInternal     = "Internal server error"
	MsgUnauthorized = "unauthorized"
)

// ErrorBody is the error envelope: {"detail":{"msg":"..."}}.
type ErrorBody struct {
	Detail ErrorDetail `json:"detail"`
}

// ErrorDetail carries the client-facing message.
type ErrorDetail struct {
	Msg string `json:"msg"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope with msg.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Detail: ErrorDetail{Msg: msg}})
}

// DecodeJSON decodes a single JSON object from r's body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("decode body: trailing data")
	}
	return nil
}
