package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/baechuer/expense-tracker/internal/application/auth"
	"github.com/baechuer/expense-tracker/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

// SMTPNotifier sends reset codes through an SMTP relay.
type SMTPNotifier struct {
	lg  zerolog.Logger
	cfg SMTPConfig

	// dial is swapped in tests.
	dial func(ctx context.Context, c *gomail.Client, m *gomail.Msg) error
}

func NewSMTPNotifier(cfg SMTPConfig, lg zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		lg:  lg.With().Str("component", "smtp_notifier").Logger(),
		cfg: cfg,
		dial: func(ctx context.Context, c *gomail.Client, m *gomail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

func (s *SMTPNotifier) SendResetCode(ctx context.Context, msg auth.ResetCodeMessage) error {
	if s.cfg.Host == "" {
		return domain.ErrDeliveryFailed(errors.New("smtp transport not configured"))
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return domain.ErrDeliveryFailed(err)
	}

	c, err := gomail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return domain.ErrDeliveryFailed(fmt.Errorf("smtp client init: %w", err))
	}

	if err := s.dial(ctx, c, m); err != nil {
		s.lg.Error().Err(err).Str("host", s.cfg.Host).Msg("smtp send failed")
		return domain.ErrDeliveryFailed(err)
	}

	s.lg.Info().Str("host", s.cfg.Host).Msg("reset code sent")
	return nil
}

func (s *SMTPNotifier) buildMessage(msg auth.ResetCodeMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.Email); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject("Password Reset OTP")

	mins := int(msg.ExpiresIn.Minutes())
	text := fmt.Sprintf("Hello %s,\n\nYour OTP for password reset is: %s\nIt will expire in %d minutes.\n", msg.FullName, msg.Code, mins)
	m.SetBodyString(gomail.TypeTextPlain, text)
	m.AddAlternativeString(gomail.TypeTextHTML, renderResetHTML(msg.FullName, msg.Code, mins))
	return m, nil
}

func (s *SMTPNotifier) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(s.cfg.Port)}

	switch {
	case s.cfg.Port == 465:
		opts = append(opts, gomail.WithSSL())
	case s.cfg.Insecure:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func renderResetHTML(name, code string, mins int) string {
	return `<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <p>Hello ` + html.EscapeString(name) + `,</p>
    <p>Your OTP for password reset is:</p>
    <p style="font-size:24px; letter-spacing:4px;"><b>` + html.EscapeString(code) + `</b></p>
    <p style="color:#555; font-size:12px;">It will expire in ` + fmt.Sprint(mins) + ` minutes.</p>
  </body>
</html>`
}
