package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/billdesk/billdesk/internal/allocator"
	"github.com/billdesk/billdesk/internal/models"
)

type paymentResponse struct {
	ID              string                 `json:"id"`
	CustomerID      string                 `json:"customer_id"`
	Amount          decimal.Decimal        `json:"amount"`
	Method          string                 `json:"method"`
	ReferenceNumber string                 `json:"reference_number,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Allocations     []allocator.Allocation `json:"allocations"`
	CreatedAt       int64                  `json:"created_at"`
}

func toPaymentResponse(p *models.Payment) paymentResponse {
	allocations := make([]allocator.Allocation, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocations = append(allocations, allocator.Allocation{
			BillID:        a.BillID,
			AmountApplied: a.AmountApplied,
		})
	}
	return paymentResponse{
		ID:              p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		Allocations:     allocations,
		CreatedAt:       p.CreatedAt,
	}
}

func toPaymentResponses(payments []*models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out
}

// handleCreatePayment applies a bulk allocation submission as one payment.
// The body is the allocator's submission payload:
//
//	{"allocations": [{"bill_id": "...", "amount_applied": "600"}],
//	 "payment_method": "card", "reference_number": "", "notes": ""}
//
// Returns 201 with the created payment on success. An empty allocation list
// is a 400; a stale selection that overdraws a bill is a 409 and leaves
// everything untouched so the client can refresh and retry.
// POST /api/payments
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var sub allocator.Submission
	if !decodeBody(w, r, &sub) {
		return
	}

	sess := SessionFromContext(r.Context())
	payment, err := s.payments.Apply(r.Context(), sess.UserID(), &sub)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// handleListPayments returns payment history: the caller's own, or all
// payments for superusers.
// GET /api/payments
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var payments []*models.Payment
	var err error
	if sess.IsSuperuser() {
		payments, err = s.payments.ListAll(r.Context())
	} else {
		payments, err = s.payments.ListForCustomer(r.Context(), sess.UserID())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponses(payments))
}

// handleGetPayment retrieves one payment with its allocations.
// GET /api/payments/{id}
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

// handleDeletePayment removes a payment and reverses its allocations.
// DELETE /api/payments/{id}
func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.payments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
