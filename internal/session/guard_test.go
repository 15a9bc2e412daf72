package session

import "testing"

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name         string
		session      Session
		role         string
		target       string
		wantGranted  bool
		wantRedirect string
	}{
		{
			name:        "matching role flag grants",
			session:     Session{KeyIsCustomer: "true"},
			role:        "customer",
			wantGranted: true,
		},
		{
			name:         "flag false denies with default redirect",
			session:      Session{KeyIsCustomer: "false"},
			role:         "customer",
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:         "flag absent denies",
			session:      Session{},
			role:         "biller",
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:         "flag must be exactly the string true",
			session:      Session{KeyIsBiller: "True"},
			role:         "biller",
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:        "superuser bypasses a failing role check",
			session:     Session{KeyIsSuperuser: "true", KeyIsCustomer: "false"},
			role:        "customer",
			wantGranted: true,
		},
		{
			name:         "superuser flag false is not a bypass",
			session:      Session{KeyIsSuperuser: "false", KeyIsCustomer: "false"},
			role:         "customer",
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:         "custom redirect target is honored",
			session:      Session{},
			role:         "customer",
			target:       "/login",
			wantGranted:  false,
			wantRedirect: "/login",
		},
		{
			name:         "nil session denies",
			session:      nil,
			role:         "customer",
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RequireRole(tt.session, tt.role, tt.target)
			if d.Granted != tt.wantGranted {
				t.Errorf("Granted = %v, want %v", d.Granted, tt.wantGranted)
			}
			if d.RedirectTo != tt.wantRedirect {
				t.Errorf("RedirectTo = %q, want %q", d.RedirectTo, tt.wantRedirect)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name         string
		session      Session
		required     []string
		wantGranted  bool
		wantRedirect string
	}{
		{
			name:        "single code present grants",
			session:     Session{KeyPermissions: `["bills.view"]`},
			required:    []string{"bills.view"},
			wantGranted: true,
		},
		{
			name:         "single code absent denies",
			session:      Session{KeyPermissions: `["bills.view"]`},
			required:     []string{"bills.delete"},
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:         "all codes required: subset denies",
			session:      Session{KeyPermissions: `["a"]`},
			required:     []string{"a", "b"},
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:        "all codes required: superset grants",
			session:     Session{KeyPermissions: `["a","b","c"]`},
			required:    []string{"a", "b"},
			wantGranted: true,
		},
		{
			name:         "malformed permissions JSON fails closed",
			session:      Session{KeyPermissions: `{"not": "a list"`},
			required:     []string{"a"},
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:         "missing permissions fact fails closed",
			session:      Session{},
			required:     []string{"a"},
			wantGranted:  false,
			wantRedirect: DefaultRedirect,
		},
		{
			name:        "superuser bypasses permission check",
			session:     Session{KeyIsSuperuser: "true"},
			required:    []string{"a", "b"},
			wantGranted: true,
		},
		{
			name:        "no required codes grants trivially",
			session:     Session{},
			wantGranted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RequirePermission(tt.session, "", tt.required...)
			if d.Granted != tt.wantGranted {
				t.Errorf("Granted = %v, want %v", d.Granted, tt.wantGranted)
			}
			if d.RedirectTo != tt.wantRedirect {
				t.Errorf("RedirectTo = %q, want %q", d.RedirectTo, tt.wantRedirect)
			}
		})
	}
}

func TestPermissionsParsing(t *testing.T) {
	s := Session{KeyPermissions: `["a","b","a"]`}
	codes := s.Permissions()
	if len(codes) != 3 {
		t.Fatalf("Permissions() = %v, want 3 entries", codes)
	}

	// Round trip through the encoder.
	encoded := EncodePermissions([]string{"x", "y"})
	s = Session{KeyPermissions: encoded}
	codes = s.Permissions()
	if len(codes) != 2 || codes[0] != "x" || codes[1] != "y" {
		t.Errorf("round trip = %v, want [x y]", codes)
	}

	// Nil encodes to an empty array, not JSON null.
	if EncodePermissions(nil) != "[]" {
		t.Errorf("EncodePermissions(nil) = %q, want []", EncodePermissions(nil))
	}
}
