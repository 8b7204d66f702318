package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/gshelgaas/bankcards/internal/api/handlers"
	"github.com/gshelgaas/bankcards/internal/auth"
	"github.com/gshelgaas/bankcards/internal/config"
	"github.com/gshelgaas/bankcards/internal/metrics"
	"github.com/gshelgaas/bankcards/internal/middleware"
	"github.com/gshelgaas/bankcards/internal/services"
)

type RouterDeps struct {
	Cfg          config.Config
	TokenManager *auth.TokenManager
	UserSvc      *services.UserService
	CardSvc      *services.CardService
	TransferSvc  *services.TransferService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.UserSvc)
	cardH := handlers.NewCardHandler(d.CardSvc)
	transferH := handlers.NewTransferHandler(d.TransferSvc)
	userH := handlers.NewUserHandler(d.UserSvc)
	authMW := middleware.NewAuthMiddleware(d.TokenManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Route("/user", func(r chi.Router) {
				r.With(middleware.Require(middleware.OpCardOwn)).Route("/cards", func(r chi.Router) {
					r.Get("/", cardH.ListMine)
					r.Get("/{cardID}", cardH.Get)
					r.Get("/{cardID}/balance", cardH.Balance)
					r.Post("/{cardID}/block-request", cardH.RequestBlock)
				})
				r.With(middleware.Require(middleware.OpTransfer)).Route("/transfers", func(r chi.Router) {
					r.Post("/", transferH.Create)
					r.Get("/", transferH.ListMine)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Route("/cards", func(r chi.Router) {
					r.With(middleware.Require(middleware.OpCardCreate)).Post("/user/{userID}", cardH.Create)
					r.With(middleware.Require(middleware.OpCardListAll)).Get("/", cardH.ListAll)
					r.With(middleware.Require(middleware.OpCardListAll)).Get("/{cardID}", cardH.Get)
					r.With(middleware.Require(middleware.OpCardBlock)).Patch("/{cardID}/block", cardH.Block)
					r.With(middleware.Require(middleware.OpCardActivate)).Patch("/{cardID}/activate", cardH.Activate)
					r.With(middleware.Require(middleware.OpCardApproveBlock)).Patch("/{cardID}/approve-block", cardH.ApproveBlock)
					r.With(middleware.Require(middleware.OpCardDelete)).Delete("/{cardID}", cardH.Delete)
				})
				r.With(middleware.Require(middleware.OpUserManage)).Route("/users", func(r chi.Router) {
					r.Post("/", userH.Create)
					r.Get("/", userH.List)
					r.Get("/{userID}", userH.Get)
					r.Delete("/{userID}", userH.Delete)
				})
			})
		})
	})

	return r
}
