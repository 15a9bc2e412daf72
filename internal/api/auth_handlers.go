package api

import (
	"net/http"

	"github.com/billdesk/billdesk/internal/auth"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/session"
)

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	IsBiller  bool   `json:"is_biller"`
	BillerID  string `json:"biller_id"`
}

type userResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	IsCustomer  bool     `json:"is_customer"`
	IsBiller    bool     `json:"is_biller"`
	IsSuperuser bool     `json:"is_superuser"`
	BillerID    string   `json:"biller_id,omitempty"`
	GroupIDs    []string `json:"group_ids,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsCustomer:  u.IsCustomer,
		IsBiller:    u.IsBiller,
		IsSuperuser: u.IsSuperuser,
		BillerID:    u.BillerID,
		GroupIDs:    u.GroupIDs,
		CreatedAt:   u.CreatedAt,
	}
}

// handleRegister opens a new account.
// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), auth.Registration{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		IsBiller:  req.IsBiller,
		BillerID:  req.BillerID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin verifies credentials and returns the full session fact set.
// The browser client persists these facts in its cookie store; the token
// fact doubles as the bearer credential for subsequent requests.
// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	facts, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, facts)
}

// handleLogout clears the session for the presented token.
// POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
		return
	}

	if err := s.auth.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe echoes the caller's session facts.
// GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           sess.UserID(),
		"email":        sess.Get(session.KeyEmail),
		"first_name":   sess.Get(session.KeyFirstName),
		"last_name":    sess.Get(session.KeyLastName),
		"is_customer":  sess.Get(session.KeyIsCustomer),
		"is_biller":    sess.Get(session.KeyIsBiller),
		"is_superuser": sess.Get(session.KeyIsSuperuser),
		"permissions":  sess.Permissions(),
	})
}
