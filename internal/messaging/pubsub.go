package messaging

import (
	"context"
	"encoding/json"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

type orderPublisher interface {
	PublishOrder(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// PubSubMessenger publishes orders as JSON for a downstream notifier.
type PubSubMessenger struct {
	pub orderPublisher
}

func NewPubSubMessenger(pub orderPublisher) (*PubSubMessenger, error) {
	if pub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pubsub publisher required")
	}
	return &PubSubMessenger{pub: pub}, nil
}

func (m *PubSubMessenger) Name() string { return driverPubSub }

func (m *PubSubMessenger) Send(ctx context.Context, msg orders.OrderMessage) (orders.Receipt, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return orders.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order message")
	}
	id, err := m.pub.PublishOrder(ctx, data, map[string]string{
		"store_id": msg.StoreID.String(),
		"order_id": msg.ID.String(),
		"mode":     string(msg.Summary.Mode),
	})
	if err != nil {
		return orders.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish order message")
	}
	return orders.Receipt{Driver: driverPubSub, Reference: id}, nil
}
