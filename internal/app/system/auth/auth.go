// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what the identity collaborator asserts about the caller and
// what we inject into r.Context(). The core trusts these claims as given and
// never re-derives them.
type SessionUser struct {
	ID    string // user (or gym, for owners) identifier
	Name  string
	Role  string // owner | trainer | member
	GymID string // affiliated gym; empty when unaffiliated (owners: own gym)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user directly into the request context, bypassing
// token verification. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bearer-token middleware                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Claims is the JWT payload the identity service mints for authenticated
// calls.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	GymID string `json:"gym_id,omitempty"`
	jwt.RegisteredClaims
}

// Verifier parses and validates bearer tokens.
type Verifier struct {
	secret []byte
	log    *zap.Logger
}

// NewVerifier builds a Verifier for HMAC-signed tokens.
func NewVerifier(secret string, logger *zap.Logger) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥32 random chars")
	}
	if len(secret) < 32 {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	return &Verifier{secret: []byte(secret), log: logger}, nil
}

// Parse validates tokenString and returns the asserted user.
func (v *Verifier) Parse(tokenString string) (*SessionUser, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return &SessionUser{
		ID:    claims.Subject,
		Name:  claims.Name,
		Role:  strings.ToLower(claims.Role),
		GymID: claims.GymID,
	}, nil
}

// LoadUser injects the user into context if a valid bearer token is present.
// Requests without a token (or with a bad one) continue anonymously; route
// guards decide whether that matters. WebSocket clients cannot set headers
// from the browser, so a "token" query parameter is accepted as a fallback.
func (v *Verifier) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}
		if tokenString != "" {
			if u, err := v.Parse(tokenString); err == nil {
				r = withUser(r, u)
			} else {
				v.log.Debug("bearer token rejected", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

/*─────────────────────────────────────────────────────────────────────────────*
| Route guards                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a user in context (set by LoadUser).
// API callers get a plain 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// RequireRole ensures there is a user with one of the allowed roles in
// context. Missing user → 401, wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
