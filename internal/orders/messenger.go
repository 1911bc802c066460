package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/google/uuid"
)

// OrderMessage is handed to a Messenger once per submitted order.
type OrderMessage struct {
	ID         uuid.UUID   `json:"id"`
	StoreID    uuid.UUID   `json:"store_id"`
	StoreName  string      `json:"store_name"`
	CustomerID uuid.UUID   `json:"customer_id"`
	Lines      []cart.Line `json:"lines"`
	Summary    Summary     `json:"summary"`
	Text       string      `json:"text"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Receipt describes where a message went.
type Receipt struct {
	Driver    string `json:"driver"`
	Reference string `json:"reference,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Messenger delivers order messages. Sends are attempted once.
type Messenger interface {
	Name() string
	Send(ctx context.Context, msg OrderMessage) (Receipt, error)
}

// ProfileFetcher loads the store profile used to price a checkout.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, storeID uuid.UUID) (*StoreProfile, error)
}
