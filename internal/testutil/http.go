// internal/testutil/http.go
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flocklabs/flockhub/internal/app/system/auth"
	"github.com/flocklabs/flockhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context. Use
// this in handler tests that call chi.URLParam without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestAdmin returns an active admin user for injecting into request
// contexts.
func TestAdmin() models.User {
	now := time.Now().UTC()
	return models.User{
		ID:        primitive.NewObjectID(),
		Email:     "admin@test.com",
		Username:  "testadmin",
		IsActive:  true,
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestMemberUser returns an active non-admin user.
func TestMemberUser() models.User {
	now := time.Now().UTC()
	return models.User{
		ID:        primitive.NewObjectID(),
		Email:     "user@test.com",
		Username:  "testuser",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewRequest creates an HTTP request carrying the given user in context,
// bypassing token verification.
func NewRequest(method, target string, u models.User) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithTestUser(req, u)
}

// NewJSONRequest creates an authenticated request with body encoded as
// JSON.
func NewJSONRequest(t *testing.T, method, target string, body any, u models.User) *http.Request {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return auth.WithTestUser(req, u)
}

// DecodeJSON decodes a response recorder body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
