package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/expense-tracker/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	SendOTP(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type SubscriptionHandler interface {
	CreateCheckout(w http.ResponseWriter, r *http.Request)
	Verify(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Webhook(w http.ResponseWriter, r *http.Request)
}

type PremiumHandler interface {
	Features(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health       HealthHandler
	Auth         AuthHandler
	Subscription SubscriptionHandler
	Premium      PremiumHandler

	AuthMW      func(http.Handler) http.Handler
	PremiumMW   func(http.Handler) http.Handler
	RateLimitMW func(http.Handler) http.Handler // optional
	RecoverMW   func(http.Handler) http.Handler // optional, chi Recoverer otherwise

	AllowedOrigins []string
	BodyLimitBytes int64
	// TrustProxy mounts chi's RealIP so forwarded headers replace RemoteAddr.
	TrustProxy bool
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Subscription == nil {
		return nil, fmt.Errorf("nil Subscription handler")
	}
	if deps.Premium == nil {
		return nil, fmt.Errorf("nil Premium handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.PremiumMW == nil {
		return nil, fmt.Errorf("nil Premium middleware")
	}
	recoverMW := deps.RecoverMW
	if recoverMW == nil {
		recoverMW = chimw.Recoverer
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(recoverMW)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(corsOptions(deps.AllowedOrigins)))
	r.Use(middleware.BodyLimit(deps.BodyLimitBytes))

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimitMW != nil {
			r.Use(deps.RateLimitMW)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.With(deps.AuthMW).Get("/me", deps.Auth.Me)
			r.Post("/send-otp", deps.Auth.SendOTP)
			r.Post("/reset-password", deps.Auth.ResetPassword)
		})

		r.Route("/subscription", func(r chi.Router) {
			// signature-authenticated, no bearer token
			r.Post("/webhook", deps.Subscription.Webhook)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMW)
				r.Post("/create-checkout-session", deps.Subscription.CreateCheckout)
				r.Post("/verify", deps.Subscription.Verify)
				r.Get("/status", deps.Subscription.Status)
			})
		})

		r.Route("/premium", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.PremiumMW)
			r.Get("/features", deps.Premium.Features)
		})
	})

	return r, nil
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
