package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser is the session identity a handler test runs as.
type TestUser struct {
	ID       string
	Name     string
	Email    string
	Role     string
	MemberID string
}

// AdminUser returns a signed-in admin with a fresh id.
func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Admin", Email: "admin@test.com", Role: "admin"}
}

// MemberUser returns a signed-in member with a fresh id.
func MemberUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Member", Email: "member@test.com", Role: "member", MemberID: "C10000"}
}

// WithUser attaches user to the request context so handlers see it without
// a session cookie.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		MemberID: user.MemberID,
	})
}

// NewJSONRequest builds a request whose body is body encoded as JSON.
func NewJSONRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder adds assertion helpers to httptest.ResponseRecorder.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder returns an empty ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

type errorfer interface{ Errorf(string, ...any) }

func (r *ResponseRecorder) AssertStatus(t errorfer, want int) {
	if r.Code != want {
		t.Errorf("status = %d, want %d (body: %s)", r.Code, want, r.Body.String())
	}
}

func (r *ResponseRecorder) AssertContains(t errorfer, want string) {
	if body := r.Body.String(); !strings.Contains(body, want) {
		t.Errorf("body %s does not contain %q", body, want)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t interface {
	Fatalf(string, ...any)
}, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
