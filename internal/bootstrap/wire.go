package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/baechuer/expense-tracker/internal/application/auth"
	"github.com/baechuer/expense-tracker/internal/application/billing"
	"github.com/baechuer/expense-tracker/internal/audit"
	"github.com/baechuer/expense-tracker/internal/config"
	"github.com/baechuer/expense-tracker/internal/infrastructure/db/postgres"
	"github.com/baechuer/expense-tracker/internal/infrastructure/mail"
	"github.com/baechuer/expense-tracker/internal/infrastructure/memory"
	"github.com/baechuer/expense-tracker/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/expense-tracker/internal/infrastructure/payments/razorpay"
	"github.com/baechuer/expense-tracker/internal/infrastructure/redis"
	"github.com/baechuer/expense-tracker/internal/infrastructure/security"
	"github.com/baechuer/expense-tracker/internal/logger"
	"github.com/baechuer/expense-tracker/internal/metrics"
	http_handlers "github.com/baechuer/expense-tracker/internal/transport/http/handlers"
	"github.com/baechuer/expense-tracker/internal/transport/http/middleware"
	"github.com/baechuer/expense-tracker/internal/transport/http/response"
	"github.com/baechuer/expense-tracker/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string) (*sql.DB, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewNotifier func(cfg *config.Config) (auth.Notifier, error)

	NewPaymentProvider func(keyID, keySecret string) billing.PaymentProvider

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// userStore is satisfied by both the postgres and the in-memory repo.
type userStore interface {
	auth.UserRepo
	billing.UserRepo
	postgres.SeederRepo
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	lg := logger.Logger

	var cleanupFns []func()
	checks := map[string]http_handlers.Check{}

	// 1) user store: postgres when configured, memory otherwise (dev only)
	var users userStore
	if cfg.DBAddr != "" {
		db, err := deps.NewDB(cfg.DBAddr)
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if cfg.DBMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := postgres.Migrate(ctx, db)
			cancel()
			if err != nil {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
		}
		users = postgres.NewUserRepo(db)
		checks["postgres"] = db.PingContext
	} else {
		lg.Warn().Msg("DB_ADDR not set; using in-memory user store")
		users = memory.NewUserRepo()
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; using in-process stores")
			_ = c.Close()
		} else if rc, ok := c.(*redis.Client); ok {
			lg.Info().Msg("redis connected")
			redisCli = rc
			cleanupFns = append(cleanupFns, func() { _ = rc.Close() })
			checks["redis"] = rc.Ping
		} else {
			_ = c.Close()
		}
	}

	var challenges auth.ChallengeStore
	var limiter middleware.RateLimiter
	if redisCli != nil {
		challenges = redis.NewChallengeStore(redisCli)
		limiter = redis.NewFixedWindowLimiter(redisCli)
	} else {
		challenges = memory.NewChallengeStore()
	}

	// 3) reset code delivery
	notifier, err := deps.NewNotifier(cfg)
	if err != nil {
		if cfg.Env == "dev" {
			lg.Warn().Err(err).Str("notifier", cfg.Notifier).Msg("notifier unavailable; logging reset codes")
			notifier = mail.NewLogNotifier(lg)
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if c, ok := notifier.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 4) security
	lg.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)
	verifier := security.NewHMACVerifier()

	// seed (dev only)
	if cfg.Env == "dev" {
		postgres.SeedUsers(context.Background(), users, hasher, lg)
	}

	// 5) services
	auditLog := audit.New(lg)
	record := func(ctx context.Context, action string, fields map[string]string) {
		auditLog.Record(ctx, action, fields)
		metrics.RecordAction(ctx, action, fields)
	}

	authSvc := auth.NewService(
		users,
		hasher,
		signer,
		challenges,
		notifier,
		security.NewOTPGenerator(),
		auth.Config{
			AccessTTL: cfg.AccessTokenTTL,
			OTPTTL:    cfg.OTPTTL,
		},
	).WithAudit(record)

	billingSvc := billing.NewService(
		users,
		deps.NewPaymentProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		verifier,
		billing.Config{
			KeyID:                   cfg.Razorpay.KeyID,
			KeySecret:               cfg.Razorpay.KeySecret,
			PlanID:                  cfg.Razorpay.PlanID,
			WebhookSecret:           cfg.Razorpay.WebhookSecret,
			RequireWebhookSignature: cfg.WebhookRequireSignature,
		},
	).WithAudit(record)

	if cfg.Razorpay.WebhookSecret == "" && !cfg.WebhookRequireSignature {
		lg.Warn().Msg("RAZORPAY_WEBHOOK_SECRET not set; webhooks are accepted unsigned")
	}

	// 6) handlers + middleware
	authMW := middleware.Auth(signer, response.WriteError)
	premiumMW := middleware.RequirePremium(users, time.Now, response.WriteError)
	rateMW := middleware.RateLimit(limiter, middleware.FixedWindowConfig{
		RouteKey: "api",
		Limit:    cfg.RateLimitMax,
		Window:   cfg.RateLimitWindow,
	}, response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:       http_handlers.NewHealthHandler(checks),
		Auth:         http_handlers.NewAuthHandler(authSvc),
		Subscription: http_handlers.NewSubscriptionHandler(billingSvc),
		Premium:      http_handlers.NewPremiumHandler(),

		AuthMW:      authMW,
		PremiumMW:   premiumMW,
		RateLimitMW: rateMW,
		RecoverMW:   middleware.Recoverer(response.WriteError),

		AllowedOrigins: []string{cfg.ClientURL},
		BodyLimitBytes: cfg.BodyLimitBytes,
		TrustProxy:     cfg.TrustProxy,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewNotifier: newNotifier,
		NewPaymentProvider: func(keyID, keySecret string) billing.PaymentProvider {
			return razorpay.New(keyID, keySecret)
		},
		NewRouter: router.New,
	}
}

// newNotifier picks the reset code transport named by NOTIFIER.
func newNotifier(cfg *config.Config) (auth.Notifier, error) {
	switch cfg.Notifier {
	case "smtp":
		return mail.NewSMTPNotifier(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
			Insecure: cfg.SMTP.Insecure,
		}, logger.Logger), nil
	case "rabbitmq":
		n, err := rabbitmq.NewNotifier(cfg.RabbitURL, cfg.RabbitExchange, logger.Logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return mail.NewLogNotifier(logger.Logger), nil
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
