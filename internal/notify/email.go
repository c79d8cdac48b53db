package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shoply/checkout/internal/models"
)

// EmailNotifier sends order confirmations through an SMTP relay
type EmailNotifier struct {
	addr string
	from string
}

// NewEmailNotifier creates new EmailNotifier instance
func NewEmailNotifier(addr, from string) *EmailNotifier {
	return &EmailNotifier{
		addr: addr,
		from: from,
	}
}

// SendConfirmation sends order confirmation to the shipping email.
// Retry policy is the caller's concern.
func (n *EmailNotifier) SendConfirmation(ctx context.Context, order *models.Order) error {
	if n.addr == "" {
		return fmt.Errorf("smtp relay is not configured")
	}
	if order.Shipping.Email == "" {
		return fmt.Errorf("order %s has no shipping email", order.OrderID)
	}

	msg := buildConfirmation(n.from, order)

	return smtp.SendMail(n.addr, nil, n.from, []string{order.Shipping.Email}, msg)
}

func buildConfirmation(from string, order *models.Order) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", order.Shipping.Email)
	fmt.Fprintf(&b, "Subject: Order %s confirmed\r\n", order.OrderID)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", order.Shipping.Name)
	fmt.Fprintf(&b, "Your payment for order %s has been received.\r\n\r\n", order.OrderID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d: %d\r\n", item.Name, item.Quantity, item.UnitPrice*item.Quantity)
	}
	fmt.Fprintf(&b, "\r\nTotal: %d\r\n", order.Amount)

	return []byte(b.String())
}
