package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/billdesk/billdesk/internal/models"
)

// Billers

type billerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type billerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func toBillerResponse(b *models.Biller) billerResponse {
	return billerResponse{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		Phone:     b.Phone,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
	}
}

// GET /api/billers
func (s *Server) handleListBillers(w http.ResponseWriter, r *http.Request) {
	billers, err := s.store.ListBillers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]billerResponse, 0, len(billers))
	for _, b := range billers {
		resp = append(resp, toBillerResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/billers/{id}
func (s *Server) handleGetBiller(w http.ResponseWriter, r *http.Request) {
	biller, err := s.store.GetBiller(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillerResponse(biller))
}

// POST /api/billers
func (s *Server) handleCreateBiller(w http.ResponseWriter, r *http.Request) {
	var req billerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	biller := &models.Biller{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.store.CreateBiller(r.Context(), biller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillerResponse(biller))
}

// PUT /api/billers/{id}
func (s *Server) handleUpdateBiller(w http.ResponseWriter, r *http.Request) {
	biller, err := s.store.GetBiller(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req billerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != "" {
		biller.Name = req.Name
	}
	if req.Email != "" {
		biller.Email = req.Email
	}
	biller.Phone = req.Phone
	biller.Address = req.Address

	if err := s.store.UpdateBiller(r.Context(), biller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillerResponse(biller))
}

// DELETE /api/billers/{id}
func (s *Server) handleDeleteBiller(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBiller(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Users

// GET /api/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DELETE /api/users/{id}
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Permission groups

type groupRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type groupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	CreatedAt   int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	perms := g.Permissions
	if perms == nil {
		perms = []string{}
	}
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Permissions: perms,
		CreatedAt:   g.CreatedAt,
	}
}

// GET /api/groups
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toGroupResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	group := &models.Group{Name: req.Name, Permissions: req.Permissions}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// GET /api/groups/{id}
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.store.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// PUT /api/groups/{id}
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.store.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != "" {
		group.Name = req.Name
	}
	group.Permissions = req.Permissions

	if err := s.store.UpdateGroup(r.Context(), group); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// DELETE /api/groups/{id}
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /api/groups/{id}/members/{userID}
// Membership changes take effect at the user's next login, when the
// permission union is re-serialized into the session.
func (s *Server) handleAssignGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		writeServiceError(w, err)
		return
	}
	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := s.store.AssignUserToGroup(r.Context(), userID, groupID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// DELETE /api/groups/{id}/members/{userID}
func (s *Server) handleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if err := s.store.RemoveUserFromGroup(r.Context(), userID, groupID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// GET /api/permissions
func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	seen := make(map[string]bool)
	codes := []string{}
	for _, g := range groups {
		for _, code := range g.Permissions {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	sort.Strings(codes)

	writeJSON(w, http.StatusOK, map[string][]string{"permissions": codes})
}

// Notifications

type notificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// GET /api/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	notifications, err := s.notifications.ListForUser(r.Context(), sess.UserID())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// DELETE /api/notifications/{id}
func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reports

// GET /api/reports/overview
func (s *Server) handleReportOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.reports.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
