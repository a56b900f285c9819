// internal/app/system/httpjson/httpjson.go
//
// Package httpjson holds the JSON conventions for the API surface:
// responses are encoded with a small helper, and every error body is a
// structured {"detail": ...} document so clients have one shape to parse.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies to keep oversized payloads from being
// decoded. Backup restore uses its own larger cap.
const maxBodyBytes = 1 << 20

// RestoreMaxBodyBytes is the cap for the full-database restore payload.
const RestoreMaxBodyBytes = 64 << 20

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response failed", zap.Error(err))
	}
}

// Error writes a {"detail": message} body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{"detail": message})
}

// FieldErrors writes a validation failure carrying per-field messages:
// {"detail": {"field": "message", ...}}.
func FieldErrors(w http.ResponseWriter, fields map[string]string) {
	Write(w, http.StatusUnprocessableEntity, map[string]any{"detail": fields})
}

// Decode reads a JSON request body into dst, enforcing the body cap and
// rejecting trailing garbage.
func Decode(r *http.Request, dst any) error {
	return DecodeLimit(r, dst, maxBodyBytes)
}

// DecodeLimit is Decode with an explicit body cap.
func DecodeLimit(r *http.Request, dst any, limit int64) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second token means trailing content after the document.
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected content after JSON body")
	}
	return nil
}
