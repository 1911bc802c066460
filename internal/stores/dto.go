package stores

import (
	"time"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
)

// StoreDTO is the public representation of a store.
type StoreDTO struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	DeliveryFeeCents int64      `json:"delivery_fee_cents"`
	DeliveryFee      string     `json:"delivery_fee"`
	OwnerUserID      *uuid.UUID `json:"owner_user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateStoreInput is the admin payload for a new store.
type CreateStoreInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

// CreateStoreResult carries the new store and, when an owner account had to be
// provisioned, its one-time password.
type CreateStoreResult struct {
	Store             StoreDTO   `json:"store"`
	OwnerUserID       *uuid.UUID `json:"owner_user_id,omitempty"`
	OwnerTempPassword string     `json:"owner_temp_password,omitempty"`
}

// UpdateSettingsInput is the owner's store settings form. The fee accepts both
// comma and dot separators; unparsable values are stored as zero.
type UpdateSettingsInput struct {
	Name        *string `json:"name"`
	DeliveryFee *string `json:"delivery_fee"`
}

// CreateStoreDTO holds the data the repo needs to persist a store.
type CreateStoreDTO struct {
	Name             string
	Email            string
	DeliveryFeeCents int64
	OwnerUserID      *uuid.UUID
}

func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		Name:             c.Name,
		Email:            c.Email,
		DeliveryFeeCents: c.DeliveryFeeCents,
		OwnerUserID:      c.OwnerUserID,
	}
}

func FromModel(m *models.Store) StoreDTO {
	return StoreDTO{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		DeliveryFeeCents: m.DeliveryFeeCents,
		DeliveryFee:      money.Cents(m.DeliveryFeeCents).String(),
		OwnerUserID:      m.OwnerUserID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ProfileFromModel converts a store into the checkout profile.
func ProfileFromModel(m *models.Store) *orders.StoreProfile {
	fee := money.Cents(m.DeliveryFeeCents)
	if fee < 0 {
		fee = 0
	}
	return &orders.StoreProfile{
		ID:          m.ID,
		Name:        m.Name,
		DeliveryFee: fee,
		OwnerEmail:  m.Email,
	}
}
