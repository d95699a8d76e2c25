package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flexemi-backend/internal/domain/notification"
	"flexemi-backend/internal/infrastructure/metrics"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	Timeout  time.Duration
}

type SMTPNotifier struct {
	cfg SMTPConfig
	log *slog.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, log *slog.Logger) *SMTPNotifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPNotifier{cfg: cfg, log: log}
}

func (n *SMTPNotifier) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(n.cfg.Port), mail.WithTimeout(n.cfg.Timeout)}
	if n.cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.User),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return mail.NewClient(n.cfg.Host, opts...)
}

func (n *SMTPNotifier) message(msg notification.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func (n *SMTPNotifier) send(ctx context.Context, msg notification.Message) error {
	if n.cfg.Host == "" {
		n.log.WarnContext(ctx, "smtp: host not configured, skipping", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	m, err := n.message(msg)
	if err != nil {
		return err
	}
	c, err := n.client()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, m)
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg notification.Message) {
	if err := n.send(ctx, msg); err != nil {
		metrics.NotificationsFailed.WithLabelValues("smtp").Inc()
		n.log.ErrorContext(ctx, "smtp: send failed", "to", msg.To, "subject", msg.Subject, "err", err)
	}
}
