package session

import "log/slog"

// DefaultRedirect is where denied visitors land when no target is given.
const DefaultRedirect = "/unauthorized"

// Decision is the outcome of a guard check. There is no error channel:
// insufficient privilege is communicated purely through RedirectTo.
type Decision struct {
	// Granted is true when the view may render.
	Granted bool

	// RedirectTo is the route a denied visitor is sent to. Empty when
	// Granted is true.
	RedirectTo string
}

func granted() Decision {
	return Decision{Granted: true}
}

func denied(redirectTarget string) Decision {
	if redirectTarget == "" {
		redirectTarget = DefaultRedirect
	}
	return Decision{RedirectTo: redirectTarget}
}

// RequireRole gates a view on a role flag. The session fact checked is
// "is_<role>" (e.g. role "customer" reads is_customer) and must be exactly
// the string "true". A superuser session is granted unconditionally; the
// bypass is deliberate, superusers are exempt from every role check.
func RequireRole(s Session, role, redirectTarget string) Decision {
	if s.IsSuperuser() {
		slog.Debug("guard: superuser override", "role", role)
		return granted()
	}

	if s.Get("is_"+role) != "true" {
		slog.Debug("guard: role denied", "role", role, "redirect", redirectTarget)
		return denied(redirectTarget)
	}

	slog.Debug("guard: role granted", "role", role)
	return granted()
}

// RequirePermission gates a view on permission codes. Every required code
// must be present in the session's permission list (logical AND); a single
// code is the one-element case. Superusers bypass the check entirely.
//
// A malformed or absent permissions fact parses to an empty list, so any
// non-empty requirement is denied (fail closed).
func RequirePermission(s Session, redirectTarget string, required ...string) Decision {
	if s.IsSuperuser() {
		slog.Debug("guard: superuser override", "required", required)
		return granted()
	}

	held := make(map[string]bool)
	for _, code := range s.Permissions() {
		held[code] = true
	}

	for _, code := range required {
		if !held[code] {
			slog.Debug("guard: permission denied", "missing", code, "redirect", redirectTarget)
			return denied(redirectTarget)
		}
	}

	slog.Debug("guard: permission granted", "required", required)
	return granted()
}
