package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pasofino/tienda-backend/internal/orders"
	"github.com/pasofino/tienda-backend/pkg/logger"
)

const sendTimeout = 10 * time.Second

// Service dispatches storefront notifications.
type Service interface {
	SendOrderConfirmation(ctx context.Context, email string, order *orders.OrderDTO)
}

type service struct {
	mailer Mailer
	logg   *logger.Logger
}

// NewService constructs a notification service instance.
func NewService(mailer Mailer, logg *logger.Logger) (Service, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &service{mailer: mailer, logg: logg}, nil
}

// SendOrderConfirmation delivers the confirmation in the background. Failures
// are logged and never surfaced to the buyer.
func (s *service) SendOrderConfirmation(ctx context.Context, email string, order *orders.OrderDTO) {
	if order == nil || strings.TrimSpace(email) == "" {
		return
	}
	orderNumber := order.OrderNumber
	msg := Message{
		To:      email,
		Subject: fmt.Sprintf("Order confirmation %s", orderNumber),
		Body:    buildConfirmationBody(order),
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if s.logg != nil {
			sendCtx = s.logg.WithOrderNumber(sendCtx, orderNumber)
		}
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			if s.logg != nil {
				s.logg.Error(sendCtx, "order confirmation email failed", err)
			}
			return
		}
		if s.logg != nil {
			s.logg.Info(sendCtx, "order confirmation email sent")
		}
	}()
}

func buildConfirmationBody(order *orders.OrderDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your purchase!\n\nOrder %s\n\n", order.OrderNumber)
	for _, item := range order.Items {
		size := ""
		if item.Size != nil {
			size = fmt.Sprintf(" (size %s)", *item.Size)
		}
		fmt.Fprintf(&b, "%d x %s%s - %s\n", item.Quantity, item.ProductName, size, item.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nShipping: %s\nTotal: %s\n",
		order.Subtotal.StringFixed(2), order.Shipping.StringFixed(2), order.Total.StringFixed(2))
	return b.String()
}
