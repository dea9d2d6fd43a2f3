package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mintToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func memberClaims(sub string) Claims {
	return Claims{
		Name:  "Test Member",
		Role:  "member",
		GymID: "",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifier_Parse(t *testing.T) {
	v, err := NewVerifier(testSecret, zap.NewNop())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	u, err := v.Parse(mintToken(t, testSecret, memberClaims("user-1")))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if u.ID != "user-1" || u.Role != "member" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestVerifier_Parse_WrongSecret(t *testing.T) {
	v, _ := NewVerifier(testSecret, zap.NewNop())
	if _, err := v.Parse(mintToken(t, "another-secret-another-secret-xx", memberClaims("user-1"))); err == nil {
		t.Fatal("expected error for token signed with wrong secret")
	}
}

func TestVerifier_Parse_Expired(t *testing.T) {
	v, _ := NewVerifier(testSecret, zap.NewNop())
	claims := memberClaims("user-1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	if _, err := v.Parse(mintToken(t, testSecret, claims)); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	if _, err := NewVerifier("", zap.NewNop()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestLoadUser_HeaderAndQueryFallback(t *testing.T) {
	v, _ := NewVerifier(testSecret, zap.NewNop())
	token := mintToken(t, testSecret, memberClaims("user-9"))

	var seen *SessionUser
	h := v.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
	}))

	// Authorization header
	req := httptest.NewRequest("GET", "/gyms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.ID != "user-9" {
		t.Fatalf("header token: user not loaded, got %+v", seen)
	}

	// Query parameter (WebSocket clients)
	seen = nil
	req = httptest.NewRequest("GET", "/chat/ws?token="+token, nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.ID != "user-9" {
		t.Fatalf("query token: user not loaded, got %+v", seen)
	}

	// No token → anonymous, not an error
	seen = nil
	req = httptest.NewRequest("GET", "/gyms", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Fatalf("expected anonymous request, got %+v", seen)
	}
}

func TestRequireSignedIn(t *testing.T) {
	h := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := WithTestUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "u1", Role: "member"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("signed in: got %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("owner", "trainer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := WithTestUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "u1", Role: "member"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = WithTestUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "u2", Role: "Trainer"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("trainer (mixed case): got %d, want 200", rec.Code)
	}
}
