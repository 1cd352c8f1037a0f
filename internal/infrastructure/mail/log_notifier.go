package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/expense-tracker/internal/application/auth"
)

// LogNotifier writes reset codes to the log. Dev only.
type LogNotifier struct {
	lg zerolog.Logger
}

func NewLogNotifier(lg zerolog.Logger) *LogNotifier {
	return &LogNotifier{lg: lg.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) SendResetCode(ctx context.Context, msg auth.ResetCodeMessage) error {
	n.lg.Warn().
		Str("to", msg.Email).
		Str("code", msg.Code).
		Dur("expires_in", msg.ExpiresIn).
		Msg("DEV reset code (not emailed)")
	return nil
}
