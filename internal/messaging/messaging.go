// Package messaging holds the order hand-off drivers used at checkout.
package messaging

import (
	"fmt"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/pkg/config"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
)

const (
	driverLog      = config.MessagingDriverLog
	driverWhatsApp = config.MessagingDriverWhatsApp
	driverPubSub   = config.MessagingDriverPubSub
)

// New picks the messenger for cfg. pub is only consulted for the pubsub driver.
func New(cfg config.MessagingConfig, pub orderPublisher, logg *logger.Logger) (orders.Messenger, error) {
	switch driver := cfg.NormalizedDriver(); driver {
	case driverLog:
		return NewLogMessenger(logg), nil
	case driverWhatsApp:
		return NewWhatsAppMessenger(cfg.WhatsAppBaseURL, cfg.WhatsAppPhone)
	case driverPubSub:
		return NewPubSubMessenger(pub)
	default:
		return nil, fmt.Errorf("unsupported messaging driver %q", driver)
	}
}
