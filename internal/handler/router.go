package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mdflamingo/paydesk/internal/config"
	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"github.com/mdflamingo/paydesk/internal/models"
	"github.com/mdflamingo/paydesk/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Health      map[string]Pinger
	Limiter     RateLimiter
	Balance     *service.BalanceService
	Withdrawals *service.WithdrawalService
	Deposits    *service.DepositService
	KYC         *service.KYCService
	Admin       *service.AdminService
}

func NewRouter(conf *config.Config, svc Services) *chi.Mux {
	r := chi.NewRouter()

	r.Use(logger.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   conf.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		HealthCheck(w, req, svc.Health)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(conf.JWTSecret))
		if svc.Limiter != nil {
			r.Use(rateLimit(svc.Limiter))
		}

		r.Get("/balance", func(w http.ResponseWriter, req *http.Request) {
			GetBalanceHandler(w, req, svc.Balance)
		})

		r.Get("/withdrawals", func(w http.ResponseWriter, req *http.Request) {
			GetWithdrawalsHandler(w, req, svc.Withdrawals)
		})
		r.Get("/withdrawals/networks", GetNetworksHandler)
		r.Get("/withdrawals/quote", func(w http.ResponseWriter, req *http.Request) {
			QuoteHandler(w, req, svc.Withdrawals)
		})
		r.Post("/withdrawals", func(w http.ResponseWriter, req *http.Request) {
			WithdrawHandler(w, req, svc.Withdrawals)
		})

		r.Get("/deposits/address", func(w http.ResponseWriter, req *http.Request) {
			DepositAddressHandler(w, req, svc.Deposits)
		})
		r.Post("/deposits/crypto", func(w http.ResponseWriter, req *http.Request) {
			CryptoDepositHandler(w, req, svc.Deposits)
		})
		r.Post("/deposits/bank", func(w http.ResponseWriter, req *http.Request) {
			FileDepositHandler(w, req, svc.Deposits, models.MethodBankTransfer)
		})
		r.Post("/deposits/wire", func(w http.ResponseWriter, req *http.Request) {
			FileDepositHandler(w, req, svc.Deposits, models.MethodWireTransfer)
		})
		r.Get("/banking/account", func(w http.ResponseWriter, req *http.Request) {
			BankAccountHandler(w, req, svc.Deposits)
		})

		r.Post("/kyc", func(w http.ResponseWriter, req *http.Request) {
			KYCHandler(w, req, svc.KYC)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminGuard)

			r.Get("/withdrawals", func(w http.ResponseWriter, req *http.Request) {
				AdminListHandler(w, req, svc.Admin)
			})
			r.Post("/withdrawals/process-pending", func(w http.ResponseWriter, req *http.Request) {
				AdminProcessPendingHandler(w, req, svc.Admin)
			})
			for _, action := range []string{service.ActionApprove, service.ActionReject, service.ActionRetry, service.ActionStatus} {
				action := action // per-iteration copy; go directive is below 1.22
				r.Post("/withdrawals/{id}/"+action, func(w http.ResponseWriter, req *http.Request) {
					AdminActionHandler(w, req, svc.Admin, action)
				})
			}
			r.Get("/balance", func(w http.ResponseWriter, req *http.Request) {
				AdminBalanceHandler(w, req, svc.Admin)
			})
			r.Get("/actions", func(w http.ResponseWriter, req *http.Request) {
				AdminActionsHandler(w, req, svc.Admin)
			})
		})
	})

	return r
}
