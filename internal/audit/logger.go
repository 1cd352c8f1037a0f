package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	pkgctx "github.com/baechuer/expense-tracker/internal/pkg/context"
)

// Logger provides structured audit logging for account and billing events.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Actions logged at warn level; everything else is info.
var warnActions = map[string]bool{
	"login_failed":                   true,
	"password_reset_delivery_failed": true,
	"entitlement_deactivated":        true,
	"checkout_signature_rejected":    true,
	"webhook_signature_rejected":     true,
	"webhook_unsigned":               true,
	"webhook_payment_failed":         true,
	"webhook_unmatched_customer":     true,
}

// Record is the sink services receive through WithAudit.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if warnActions[action] {
		ev = l.log.Warn()
	}
	ev = ev.Str("action", action)
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	for k, v := range fields {
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}
	ev.Msg(strings.ReplaceAll(action, "_", " "))
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
