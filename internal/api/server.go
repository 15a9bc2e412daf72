// Package api provides the HTTP server for Billdesk: REST endpoints for
// auth, bills, billers, users, groups, permissions, notifications, payments
// (including the bulk allocation endpoint) and reports.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billdesk/billdesk/internal/service"
	"github.com/billdesk/billdesk/internal/storage"
)

// Server is the Billdesk HTTP API server.
type Server struct {
	auth          *service.AuthService
	bills         *service.BillService
	payments      *service.PaymentService
	notifications *service.NotificationService
	reports       *service.ReportService
	store         storage.Store

	metricsEnabled bool
}

// NewServer creates a new API server over the given services.
// The store is used directly for the thin administrative CRUD surfaces
// (billers, users, groups) that have no service-level behavior of their own.
func NewServer(
	authSvc *service.AuthService,
	bills *service.BillService,
	payments *service.PaymentService,
	notifications *service.NotificationService,
	reports *service.ReportService,
	store storage.Store,
) *Server {
	return &Server{
		auth:          authSvc,
		bills:         bills,
		payments:      payments,
		notifications: notifications,
		reports:       reports,
		store:         store,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)
	r.Use(s.sessionContext)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Denied guard checks land here.
	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "you do not have access to this view")
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		// Everything below requires a logged-in session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/me", s.handleMe)

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", s.handleListBills)
				r.Get("/outstanding", s.handleOutstandingBills)
				r.With(s.requireRole("biller")).Post("/", s.handleCreateBill)
				r.Get("/{id}", s.handleGetBill)
				r.With(s.requireRole("biller")).Put("/{id}", s.handleUpdateBill)
				r.With(s.requireRole("biller")).Delete("/{id}", s.handleDeleteBill)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", s.handleListPayments)
				r.With(s.requireRole("customer")).Post("/", s.handleCreatePayment)
				r.Get("/{id}", s.handleGetPayment)
				r.With(s.requirePermission("payments.delete")).Delete("/{id}", s.handleDeletePayment)
			})

			r.Route("/billers", func(r chi.Router) {
				r.Get("/", s.handleListBillers)
				r.Get("/{id}", s.handleGetBiller)
				r.With(s.requireRole("superuser")).Post("/", s.handleCreateBiller)
				r.With(s.requireRole("superuser")).Put("/{id}", s.handleUpdateBiller)
				r.With(s.requireRole("superuser")).Delete("/{id}", s.handleDeleteBiller)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireRole("superuser"))
				r.Get("/", s.handleListUsers)
				r.Get("/{id}", s.handleGetUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Use(s.requireRole("superuser"))
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)
				r.Get("/{id}", s.handleGetGroup)
				r.Put("/{id}", s.handleUpdateGroup)
				r.Delete("/{id}", s.handleDeleteGroup)
				r.Post("/{id}/members/{userID}", s.handleAssignGroupMember)
				r.Delete("/{id}/members/{userID}", s.handleRemoveGroupMember)
			})

			// Flat list of every permission code currently granted by any group.
			r.With(s.requireRole("superuser")).Get("/permissions", s.handleListPermissions)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Post("/{id}/read", s.handleMarkNotificationRead)
				r.Delete("/{id}", s.handleDeleteNotification)
			})

			r.With(s.requirePermission("reports.view")).Get("/reports/overview", s.handleReportOverview)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
