package session

import (
	"errors"
	"net/http"
	"strings"

	"rentledger/internal/log"
)

const cookieName = "session"

// Middleware resolves the session once per request. Requests without a
// token pass through anonymously; a bad token is rejected with 401.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			s, err := v.Verify(token)
			if err != nil {
				log.FromContext(r.Context()).WarnContext(r.Context(), "Rejected session token",
					log.FieldComponent, log.ComponentSession,
					log.FieldError, err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Require returns the request's session, failing when there is none or when
// adminOnly is set and the caller is not an admin.
func Require(r *http.Request, adminOnly bool) (Session, error) {
	s, ok := FromContext(r.Context())
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	if adminOnly && !s.IsAdmin() {
		return Session{}, ErrForbidden
	}
	return s, nil
}
