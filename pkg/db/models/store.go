package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a restaurant listed on the marketplace.
type Store struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name             string     `gorm:"column:name;not null"`
	Email            string     `gorm:"column:email;not null;default:''"`
	DeliveryFeeCents int64      `gorm:"column:delivery_fee_cents;not null;default:0"`
	OwnerUserID      *uuid.UUID `gorm:"column:owner_user_id;type:uuid"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
