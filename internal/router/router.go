package router

import (
	"net/http"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/ledger"
	"github.com/taskhive/backend/internal/payments"
	"github.com/taskhive/backend/internal/submissions"
	"github.com/taskhive/backend/internal/tasks"
	"github.com/taskhive/backend/internal/withdrawals"
)

// New returns an http.Handler serving the API under /api/v1 plus the
// static upload files under /uploads/.
func New(
	authSvc auth.Service,
	authHandler *auth.Handler,
	taskHandler *tasks.Handler,
	submissionHandler *submissions.Handler,
	withdrawalHandler *withdrawals.Handler,
	paymentHandler *payments.Handler,
	ledgerHandler *ledger.Handler,
	uploadDir string,
) http.Handler {
	mux := http.NewServeMux()
	const base = "/api/v1"

	user := auth.RequireUser(authSvc)
	admin := auth.RequireAdmin(authSvc)

	mux.HandleFunc("POST "+base+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+base+"/auth/login", authHandler.Login)
	mux.Handle("GET "+base+"/profile", user(http.HandlerFunc(authHandler.Profile)))

	mux.HandleFunc("GET "+base+"/tasks", taskHandler.List)
	mux.Handle("POST "+base+"/tasks", admin(http.HandlerFunc(taskHandler.Create)))
	mux.Handle("POST "+base+"/tasks/{id}/take", user(http.HandlerFunc(taskHandler.Take)))

	mux.Handle("POST "+base+"/submissions", user(http.HandlerFunc(submissionHandler.Submit)))
	mux.Handle("GET "+base+"/my/submissions", user(http.HandlerFunc(submissionHandler.Mine)))
	mux.Handle("GET "+base+"/admin/submissions", admin(http.HandlerFunc(submissionHandler.AdminList)))
	mux.Handle("POST "+base+"/admin/submissions/{id}/review", admin(http.HandlerFunc(submissionHandler.Review)))

	mux.Handle("POST "+base+"/withdraw", user(http.HandlerFunc(withdrawalHandler.Withdraw)))
	mux.Handle("GET "+base+"/my/withdrawals", user(http.HandlerFunc(withdrawalHandler.Mine)))

	mux.Handle("POST "+base+"/payment/create-checkout-session", user(http.HandlerFunc(paymentHandler.CreateCheckoutSession)))
	mux.HandleFunc("POST "+base+"/payment/webhook", paymentHandler.Webhook)

	mux.Handle("POST "+base+"/admin/credit-user", admin(http.HandlerFunc(ledgerHandler.CreditUser)))
	mux.Handle("GET "+base+"/my/ledger", user(http.HandlerFunc(ledgerHandler.History)))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	return mux
}
