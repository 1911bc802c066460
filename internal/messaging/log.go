package messaging

import (
	"context"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
)

// LogMessenger writes each order to the structured log. It is meant for local
// development where no store phone or topic is wired.
type LogMessenger struct {
	logg *logger.Logger
}

func NewLogMessenger(logg *logger.Logger) *LogMessenger {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogMessenger{logg: logg}
}

func (m *LogMessenger) Name() string { return driverLog }

func (m *LogMessenger) Send(ctx context.Context, msg orders.OrderMessage) (orders.Receipt, error) {
	ctx = m.logg.WithFields(ctx, map[string]any{
		"order_id":  msg.ID.String(),
		"store_id":  msg.StoreID.String(),
		"total":     msg.Summary.Total.String(),
		"item_rows": len(msg.Lines),
		"text":      msg.Text,
	})
	m.logg.Info(ctx, "order message")
	return orders.Receipt{Driver: driverLog, Reference: msg.ID.String()}, nil
}
