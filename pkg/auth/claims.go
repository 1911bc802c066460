package auth

import (
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	Level   *enums.RoleLevel
	StoreID *uuid.UUID
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. A nil Level
// means the account has no resolvable role yet.
type AccessTokenClaims struct {
	UserID  uuid.UUID        `json:"user_id"`
	Email   string           `json:"email,omitempty"`
	Level   *enums.RoleLevel `json:"level,omitempty"`
	StoreID *uuid.UUID       `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}
