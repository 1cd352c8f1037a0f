package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr       string
	ClientURL      string
	BodyLimitBytes int64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	//Auth / Security
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	// Password reset codes
	OTPTTL time.Duration

	// Infrastructure (all optional; empty means in-process fallback)
	DBAddr        string
	DBMigrate     bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Reset code delivery: smtp | rabbitmq | log
	Notifier       string
	SMTP           SMTPConfig
	RabbitURL      string
	RabbitExchange string

	// Billing
	Razorpay                RazorpayConfig
	WebhookRequireSignature bool

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool

	// Global per-IP limiter
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Insecure bool
	Timeout  time.Duration
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	PlanID        string
	WebhookSecret string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		ClientURL: getEnv("CLIENT_URL", "http://localhost:5173"),
		JWTIssuer: getEnv("JWT_ISSUER", "expense-tracker"),
	}
	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr != "" && !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, fmt.Errorf("DB_ADDR must be a postgres:// URL")
	}
	if cfg.DBMigrate, err = getBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.DBAddr == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR (only optional when ENV=dev)")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	defNotifier := "smtp"
	if cfg.Env == "dev" {
		defNotifier = "log"
	}
	cfg.Notifier = strings.ToLower(getEnv("NOTIFIER", defNotifier))
	switch cfg.Notifier {
	case "smtp", "rabbitmq":
	case "log":
		if cfg.Env != "dev" {
			return nil, fmt.Errorf("NOTIFIER=log writes reset codes to the log and is only allowed when ENV=dev")
		}
	default:
		return nil, fmt.Errorf("NOTIFIER must be one of smtp|rabbitmq|log, got %q", cfg.Notifier)
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.From = getEnv("SMTP_FROM", defaultFrom(cfg.SMTP.Username))
	if cfg.SMTP.Insecure, err = getBool("SMTP_INSECURE", false); err != nil {
		return nil, err
	}
	if cfg.SMTP.Timeout, err = getDuration("SMTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Notifier == "smtp" && cfg.SMTP.Host == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: SMTP_HOST (NOTIFIER=smtp)")
	}

	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "expense.events")
	if cfg.Notifier == "rabbitmq" && cfg.RabbitURL == "" {
		return nil, fmt.Errorf("missing required env var: RABBIT_URL (NOTIFIER=rabbitmq)")
	}

	cfg.Razorpay = RazorpayConfig{
		KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		PlanID:        os.Getenv("RAZORPAY_PLAN_ID"),
		WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	}
	if cfg.WebhookRequireSignature, err = getBool("WEBHOOK_REQUIRE_SIGNATURE", cfg.Env != "dev"); err != nil {
		return nil, err
	}

	if cfg.TrustProxy, err = getBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = getInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	bl, err := getInt("BODY_LIMIT_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.BodyLimitBytes = int64(bl)

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultFrom(user string) string {
	if user == "" {
		return "no-reply@expense-tracker.local"
	}
	return fmt.Sprintf("%q <%s>", "Expense Tracker", user)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
