package models

import (
	"time"

	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. Level stays NULL until a role is assigned.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Email        string           `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Name         string           `gorm:"column:name;not null;default:''"`
	Phone        string           `gorm:"column:phone;not null;default:''"`
	Address      string           `gorm:"column:address;not null;default:''"`
	Level        *enums.RoleLevel `gorm:"column:level"`
	StoreID      *uuid.UUID       `gorm:"column:store_id;type:uuid"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
