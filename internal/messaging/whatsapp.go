package messaging

import (
	"context"
	"net/url"
	"strings"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

const defaultWhatsAppBaseURL = "https://wa.me/"

// WhatsAppMessenger turns the order text into a click-to-chat link. The
// customer's device opens the link, so nothing leaves the server here.
type WhatsAppMessenger struct {
	baseURL string
	phone   string
}

// NewWhatsAppMessenger builds the deep-link messenger. phone is optional; when
// empty WhatsApp asks the user to pick a contact.
func NewWhatsAppMessenger(baseURL, phone string) (*WhatsAppMessenger, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultWhatsAppBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid whatsapp base url")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &WhatsAppMessenger{baseURL: baseURL, phone: digitsOnly(phone)}, nil
}

func (m *WhatsAppMessenger) Name() string { return driverWhatsApp }

func (m *WhatsAppMessenger) Send(_ context.Context, msg orders.OrderMessage) (orders.Receipt, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return orders.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "order message is empty")
	}
	return orders.Receipt{
		Driver:    driverWhatsApp,
		Reference: msg.ID.String(),
		URL:       m.Link(msg.Text),
	}, nil
}

// Link returns the deep link carrying text.
func (m *WhatsAppMessenger) Link(text string) string {
	return m.baseURL + m.phone + "?text=" + encodeComponent(text)
}

// encodeComponent escapes like a URI component: spaces become %20, not '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
