package main

import (
	"net/http"

	"github.com/earnstack/backend/internal/auth"
	"github.com/earnstack/backend/internal/ledger"
	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
	"github.com/earnstack/backend/internal/notify"
	"github.com/earnstack/backend/internal/payments"
	"github.com/earnstack/backend/internal/stats"
	"github.com/earnstack/backend/internal/submissions"
	"github.com/earnstack/backend/internal/tasks"
	"github.com/earnstack/backend/internal/withdrawals"
)

// RegisterRoutes wires every HTTP endpoint onto the mux. Role gates sit in
// front of the handlers; handlers still verify ownership where needed.
func RegisterRoutes(
	mux *http.ServeMux,
	authSvc auth.Service,
	authHandler *auth.Handler,
	ledgerHandler *ledger.Handler,
	taskHandler *tasks.Handler,
	subHandler *submissions.Handler,
	wdHandler *withdrawals.Handler,
	notifyHandler *notify.Handler,
	payHandler *payments.Handler,
	statsHandler *stats.Handler,
) {
	authed := middleware.Authenticate(authSvc)
	buyerOnly := middleware.RequireRole(models.RoleBuyer)
	workerOnly := middleware.RequireRole(models.RoleWorker)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth and registration
	mux.Handle("POST /auth/token", http.HandlerFunc(authHandler.Token))
	mux.Handle("POST /users", http.HandlerFunc(ledgerHandler.RegisterUser))

	// Users
	mux.Handle("GET /users/{email}", authed(http.HandlerFunc(ledgerHandler.GetUser)))
	mux.Handle("GET /users", authed(adminOnly(http.HandlerFunc(ledgerHandler.ListUsers))))
	mux.Handle("PATCH /users/role/{email}", authed(adminOnly(http.HandlerFunc(ledgerHandler.UpdateRole))))
	mux.Handle("DELETE /users/{id}", authed(adminOnly(http.HandlerFunc(ledgerHandler.DeleteUser))))

	// Tasks
	mux.Handle("POST /tasks", authed(buyerOnly(http.HandlerFunc(taskHandler.Create))))
	mux.Handle("GET /tasks", http.HandlerFunc(taskHandler.ListOpen))
	mux.Handle("GET /tasks/{id}", http.HandlerFunc(taskHandler.Get))
	mux.Handle("GET /admin/tasks", authed(adminOnly(http.HandlerFunc(taskHandler.ListAll))))
	mux.Handle("DELETE /tasks/{id}", authed(adminOnly(http.HandlerFunc(taskHandler.Delete))))

	// Submissions
	mux.Handle("POST /submissions", authed(workerOnly(http.HandlerFunc(subHandler.Submit))))
	mux.Handle("GET /submissions", authed(http.HandlerFunc(subHandler.List)))
	mux.Handle("GET /submissions/buyer", authed(buyerOnly(http.HandlerFunc(subHandler.ListForBuyer))))
	mux.Handle("PATCH /submissions/approve/{id}", authed(buyerOnly(http.HandlerFunc(subHandler.Approve))))
	mux.Handle("PATCH /submissions/reject/{id}", authed(buyerOnly(http.HandlerFunc(subHandler.Reject))))

	// Withdrawals
	mux.Handle("POST /withdraw", authed(workerOnly(http.HandlerFunc(wdHandler.Request))))
	mux.Handle("GET /withdrawals", authed(adminOnly(http.HandlerFunc(wdHandler.ListAll))))
	mux.Handle("GET /withdrawals/worker", authed(workerOnly(http.HandlerFunc(wdHandler.ListMine))))
	mux.Handle("PATCH /withdraw/approve/{id}", authed(adminOnly(http.HandlerFunc(wdHandler.Approve))))

	// Notifications
	mux.Handle("GET /notifications", authed(http.HandlerFunc(notifyHandler.List)))
	mux.Handle("PATCH /notifications/read/{id}", authed(http.HandlerFunc(notifyHandler.MarkRead)))

	// Payments
	mux.Handle("POST /payments", authed(buyerOnly(http.HandlerFunc(payHandler.Purchase))))
	mux.Handle("GET /payments", authed(http.HandlerFunc(payHandler.History)))

	// Stats
	mux.Handle("GET /top-workers", http.HandlerFunc(statsHandler.TopWorkers))
	mux.Handle("GET /worker-stats/{email}", http.HandlerFunc(statsHandler.Worker))
	mux.Handle("GET /buyer-stats/{email}", authed(http.HandlerFunc(statsHandler.Buyer)))
	mux.Handle("GET /admin-stats", authed(adminOnly(http.HandlerFunc(statsHandler.Admin))))
}
