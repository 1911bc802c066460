package users

import (
	"time"

	"github.com/angelmondragon/foodorder-backend/internal/roles"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Address     string           `json:"address"`
	Level       *enums.RoleLevel `json:"level"`
	Role        roles.Role       `json:"role"`
	StoreID     *uuid.UUID       `json:"store_id,omitempty"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Address      string
	Level        *enums.RoleLevel
	StoreID      *uuid.UUID
}

// ProfileInput is the self-service profile update. Every field is required.
type ProfileInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Address:     u.Address,
		Level:       u.Level,
		Role:        roles.FromLevel(u.Level),
		StoreID:     u.StoreID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// IdentityFromModel builds the session identity of u.
func IdentityFromModel(u *models.User) *roles.Identity {
	if u == nil {
		return nil
	}
	identity := &roles.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}
	if u.Level != nil && u.Level.IsValid() {
		level := *u.Level
		identity.Level = &level
	}
	if identity.Role() == roles.RoleOwner && u.StoreID != nil {
		storeID := *u.StoreID
		identity.StoreID = &storeID
	}
	return identity
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Phone:        c.Phone,
		Address:      c.Address,
		Level:        c.Level,
		StoreID:      c.StoreID,
	}
}
