package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// sessionKey is the context key for the request's session facts.
const sessionKey contextKey = "session"

// SessionFromContext extracts the session facts from the context.
// Returns nil (not-logged-in) if absent.
func SessionFromContext(ctx context.Context) session.Session {
	sess, _ := ctx.Value(sessionKey).(session.Session)
	return sess
}

// bearerToken extracts the credential from the Authorization header or,
// failing that, the session_token cookie the browser client sets.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// sessionContext resolves the request's token to its stored session facts
// and attaches them to the context. Requests without a valid token continue
// with no session; route guards decide what that means.
func (s *Server) sessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token != "" {
			sess, err := s.auth.SessionFromToken(r.Context(), token)
			if err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, sess)
				r = r.WithContext(ctx)
			} else {
				slog.Debug("session lookup failed", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession rejects requests with no logged-in session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// applyDecision turns a guard decision into either pass-through or a
// redirect to the decision's target. There is no error body on deny; the
// redirect is the whole answer, exactly as the browser-side guard behaves.
func applyDecision(w http.ResponseWriter, r *http.Request, next http.Handler, d session.Decision) {
	if !d.Granted {
		http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
		return
	}
	next.ServeHTTP(w, r)
}

// requireRole gates a route on a role fact ("customer", "biller",
// "superuser"). Superusers pass unconditionally.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			applyDecision(w, r, next, session.RequireRole(sess, role, ""))
		})
	}
}

// requirePermission gates a route on permission codes; all listed codes
// must be held. Superusers pass unconditionally.
func (s *Server) requirePermission(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			applyDecision(w, r, next, session.RequirePermission(sess, "", codes...))
		})
	}
}
