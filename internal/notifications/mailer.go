package notifications

import (
	"context"
	"fmt"

	"github.com/pasofino/tienda-backend/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages. The default implementation only logs; a real
// SMTP or provider-backed sender can replace it without touching callers.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type logMailer struct {
	from string
	logg *logger.Logger
}

// NewLogMailer builds a mailer that records deliveries in the service log.
func NewLogMailer(from string, logg *logger.Logger) Mailer {
	return &logMailer{from: from, logg: logg}
}

func (m *logMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail recipient is required")
	}
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"mail_from":    m.from,
			"mail_to":      msg.To,
			"mail_subject": msg.Subject,
		})
		m.logg.Info(ctx, "outbound email recorded")
	}
	return nil
}
