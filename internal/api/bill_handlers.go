package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/models"
	"github.com/billdesk/billdesk/internal/session"
)

type billResponse struct {
	ID              string          `json:"id"`
	BillerID        string          `json:"biller_id"`
	CustomerID      string          `json:"customer_id"`
	Description     string          `json:"description"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         int64           `json:"due_date"`
	Status          string          `json:"status"`
	CreatedAt       int64           `json:"created_at"`
}

func toBillResponse(b models.Bill) billResponse {
	return billResponse{
		ID:              b.ID,
		BillerID:        b.BillerID,
		CustomerID:      b.CustomerID,
		Description:     b.Description,
		TotalAmount:     b.TotalAmount,
		PaidAmount:      b.PaidAmount,
		RemainingAmount: allocator.ComputeRemaining(b),
		DueDate:         b.DueDate,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
	}
}

func toBillResponses(bills []*models.Bill) []billResponse {
	out := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(*b))
	}
	return out
}

// handleListBills lists bills scoped to the caller: customers see their
// own, biller staff see their organization's, superusers see everything.
// GET /api/bills
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var bills []*models.Bill
	var err error
	switch {
	case sess.IsSuperuser():
		bills, err = s.bills.ListAll(r.Context())
	case sess.Get(session.KeyIsBiller) == "true":
		user, uerr := s.store.GetUserByID(r.Context(), sess.UserID())
		if uerr != nil || user == nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		bills, err = s.bills.ListForBiller(r.Context(), user.BillerID)
	default:
		bills, err = s.bills.ListForCustomer(r.Context(), sess.UserID())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponses(bills))
}

// handleOutstandingBills returns the caller's selectable pool: unpaid
// bills with a positive remainder.
// GET /api/bills/outstanding
func (s *Server) handleOutstandingBills(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	eligible, err := s.bills.Outstanding(r.Context(), sess.UserID())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]billResponse, 0, len(eligible))
	for _, b := range eligible {
		out = append(out, toBillResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type billRequest struct {
	BillerID    string          `json:"biller_id"`
	CustomerID  string          `json:"customer_id"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     int64           `json:"due_date"`
}

// handleCreateBill issues a new bill.
// POST /api/bills
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !decodeBody(w, r, &req) {
		return
	}

	bill := &models.Bill{
		BillerID:    req.BillerID,
		CustomerID:  req.CustomerID,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		DueDate:     req.DueDate,
	}
	if err := s.bills.Create(r.Context(), bill); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillResponse(*bill))
}

// handleGetBill retrieves one bill.
// GET /api/bills/{id}
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(*bill))
}

// handleUpdateBill updates a bill's editable fields.
// PUT /api/bills/{id}
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !decodeBody(w, r, &req) {
		return
	}

	bill, err := s.bills.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	bill.Description = req.Description
	bill.TotalAmount = req.TotalAmount
	bill.DueDate = req.DueDate
	if err := s.bills.Update(r.Context(), bill); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(*bill))
}

// handleDeleteBill removes a bill.
// DELETE /api/bills/{id}
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
