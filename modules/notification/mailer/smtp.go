package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"book-my-session/core/config"

	gomail "github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	client *gomail.Client
	from   mail.Address
}

// NewSMTPMailer upgrades to TLS when the server offers STARTTLS and
// authenticates only when a username is configured.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{
		client: client,
		from:   mail.Address{Name: cfg.FromName, Address: cfg.From},
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message, err := newMsg(m.from, msg, time.Now())
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To.Address, err)
	}
	return nil
}
