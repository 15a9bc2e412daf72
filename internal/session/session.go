// Package session holds the string-keyed facts established at login and the
// guard that gates views on role and permission facts.
//
// The facts mirror what the browser keeps in its cookie store: everything is
// a string, booleans included. The session is written wholesale at login,
// read fact-by-fact afterwards, and cleared wholesale at logout. Components
// receive a Session explicitly rather than reading global state, so tests
// can substitute one without touching persistent storage.
package session

import "encoding/json"

// Fact keys written at login.
const (
	KeyToken       = "token"
	KeyIsCustomer  = "is_customer"
	KeyIsBiller    = "is_biller"
	KeyIsSuperuser = "is_superuser"
	KeyID          = "id"
	KeyEmail       = "email"
	KeyFirstName   = "first_name"
	KeyLastName    = "last_name"
	KeyPermissions = "permissions"
)

// Session is the set of string-keyed facts for one logged-in user.
// A nil Session behaves as not-logged-in: every read returns "".
type Session map[string]string

// Get returns the fact for key, or "" if absent.
func (s Session) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}

// UserID returns the logged-in user's ID fact.
func (s Session) UserID() string { return s.Get(KeyID) }

// Token returns the opaque credential fact.
func (s Session) Token() string { return s.Get(KeyToken) }

// IsSuperuser reports whether the superuser fact is exactly "true".
func (s Session) IsSuperuser() bool { return s.Get(KeyIsSuperuser) == "true" }

// Permissions parses the permissions fact (JSON list of codes). An absent
// or malformed value parses to an empty list, never an error: a session we
// cannot read grants nothing.
func (s Session) Permissions() []string {
	raw := s.Get(KeyPermissions)
	if raw == "" {
		return nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil
	}
	return codes
}

// EncodePermissions serializes permission codes for the permissions fact.
// A nil list encodes as an empty JSON array.
func EncodePermissions(codes []string) string {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
