package catalog

import (
	"time"

	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
)

// PlaceholderImageURL is stored when a product is saved without an image.
const PlaceholderImageURL = "https://via.placeholder.com/150"

type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput is the owner's product form. Price accepts "29,90" or "29.90".
type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

// Snapshot is the full catalog of a store at one point in time. Subscribers
// always receive whole snapshots, never deltas.
type Snapshot struct {
	StoreID    uuid.UUID     `json:"store_id"`
	Version    uint64        `json:"version"`
	Products   []ProductDTO  `json:"products"`
	Categories []CategoryDTO `json:"categories"`
	TakenAt    time.Time     `json:"taken_at"`
}

func productFromModel(m *models.Product) ProductDTO {
	return ProductDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		PriceCents:  m.PriceCents,
		Price:       money.Cents(m.PriceCents).String(),
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func categoryFromModel(m *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}
