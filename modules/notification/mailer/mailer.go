package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	gomail "github.com/wneessen/go-mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          mail.Address
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer delivers one message. Implementations must honour ctx where the
// transport allows it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// newMsg builds the MIME message: a plain text body followed by the attachments.
func newMsg(from mail.Address, msg Message, now time.Time) (*gomail.Msg, error) {
	if msg.To.Address == "" {
		return nil, fmt.Errorf("mailer: recipient address is required")
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(from.Name, from.Address); err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	if err := m.AddToFormat(msg.To.Name, msg.To.Address); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(now)
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Data),
			gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}
	return m, nil
}
