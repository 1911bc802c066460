package orders

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
)

// DefaultCurrencySymbol prefixes amounts in order messages.
const DefaultCurrencySymbol = "R$"

const messageDivider = "--------------------------"

// FormatOrderMessage renders the order as the text handed to the messenger.
func FormatOrderMessage(c *cart.Cart, summary Summary, storeName string) string {
	return MessageFormatter{}.Format(c, summary, storeName)
}

// MessageFormatter renders order messages with a configurable currency symbol.
type MessageFormatter struct {
	Currency string
}

func (f MessageFormatter) Format(c *cart.Cart, summary Summary, storeName string) string {
	symbol := f.Currency
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	if c == nil {
		c = cart.New()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Novo Pedido - %s*\n\n", strings.TrimSpace(storeName))
	b.WriteString("*Itens:*\n")
	for _, line := range c.Lines() {
		fmt.Fprintf(&b, "• %dx %s (%s)\n", line.Quantity, line.Name, line.Total().Format(symbol))
	}
	b.WriteString("\n" + messageDivider + "\n")
	fmt.Fprintf(&b, "*Subtotal:* %s\n", summary.Subtotal.Format(symbol))
	fmt.Fprintf(&b, "*Tipo:* %s\n", summary.Mode.Label())
	if summary.Mode == enums.FulfillmentDelivery {
		fmt.Fprintf(&b, "*Taxa de Entrega:* %s\n", summary.DeliveryFee.Format(symbol))
		fmt.Fprintf(&b, "*Endereço:* %s\n", summary.Address)
	}
	if summary.Payment != "" {
		fmt.Fprintf(&b, "*Pagamento:* %s\n", summary.Payment.Label())
	}
	fmt.Fprintf(&b, "\n*TOTAL FINAL: %s*", summary.Total.Format(symbol))
	return b.String()
}
