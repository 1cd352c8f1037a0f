package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/expense-tracker/internal/application/auth"
	"github.com/baechuer/expense-tracker/internal/domain"
)

const (
	DefaultExchange = "expense.events"

	ResetCodeRoutingKey = "auth.password.reset_code.requested"

	// Minimum window to wait for Return / Confirm.
	publishWait = 500 * time.Millisecond
)

// ResetCodeEvent is the message body consumed by the mail worker.
type ResetCodeEvent struct {
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Code        string    `json:"code"`
	ExpiresIn   int64     `json:"expires_in_seconds"`
	RequestedAt time.Time `json:"requested_at"`
}

// Notifier publishes reset codes to a topic exchange with publisher confirms.
type Notifier struct {
	url      string
	exchange string
	lg       zerolog.Logger
	now      func() time.Time

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return

	publish func(ctx context.Context, routingKey string, body []byte) error
}

func NewNotifier(url, exchange string, lg zerolog.Logger) (*Notifier, error) {
	n := newNotifier(url, exchange, lg)
	if err := n.connect(); err != nil {
		return nil, domain.ErrRabbitUnavailable(err)
	}
	return n, nil
}

func newNotifier(url, exchange string, lg zerolog.Logger) *Notifier {
	if exchange == "" {
		exchange = DefaultExchange
	}
	n := &Notifier{
		url:      url,
		exchange: exchange,
		lg:       lg.With().Str("component", "rabbitmq_notifier").Logger(),
		now:      time.Now,
	}
	n.publish = n.publishConfirmed
	return n
}

func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetConn()
	return nil
}

func (n *Notifier) SendResetCode(ctx context.Context, msg auth.ResetCodeMessage) error {
	evt := ResetCodeEvent{
		Email:       msg.Email,
		FullName:    msg.FullName,
		Code:        msg.Code,
		ExpiresIn:   int64(msg.ExpiresIn / time.Second),
		RequestedAt: n.now().UTC(),
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return domain.ErrDeliveryFailed(fmt.Errorf("marshal payload: %w", err))
	}

	if err := n.publish(ctx, ResetCodeRoutingKey, body); err != nil {
		n.lg.Error().Err(err).Str("routing_key", ResetCodeRoutingKey).Msg("publish failed")
		return domain.ErrDeliveryFailed(err)
	}
	return nil
}

func (n *Notifier) connect() error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		n.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	n.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	n.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	n.conn = conn
	n.ch = ch
	return nil
}

func (n *Notifier) ensureConnected() error {
	if n.conn != nil && !n.conn.IsClosed() && n.ch != nil {
		return nil
	}
	return n.connect()
}

func (n *Notifier) publishConfirmed(ctx context.Context, routingKey string, body []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.ensureConnected(); err != nil {
		return err
	}

	// Drop stale confirms so results are not mixed up.
drain:
	for {
		select {
		case <-n.confirmCh:
		case <-n.returnCh:
		default:
			break drain
		}
	}

	if err := n.ch.PublishWithContext(
		ctx,
		n.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    n.now(),
			Body:         body,
		},
	); err != nil {
		n.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	select {
	case ret := <-n.returnCh:
		return unroutable(routingKey, ret)

	case conf := <-n.confirmCh:
		// A Return for a mandatory publish precedes its Ack.
		select {
		case ret := <-n.returnCh:
			return unroutable(routingKey, ret)
		default:
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-time.After(publishWait):
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
}

func (n *Notifier) resetConn() {
	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
}
