package roles

import (
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
)

// Role is the resolved variant of an identity's level.
type Role string

const (
	RoleUnresolved Role = "unresolved"
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
	RoleOwner      Role = "owner"
)

// All lists every variant, Unresolved included.
var All = []Role{RoleUnresolved, RoleAdmin, RoleCustomer, RoleOwner}

// Identity is the authenticated principal of a request. It does not change for
// the lifetime of a session.
type Identity struct {
	UserID  uuid.UUID        `json:"user_id"`
	Email   string           `json:"email"`
	Name    string           `json:"name,omitempty"`
	Level   *enums.RoleLevel `json:"level"`
	StoreID *uuid.UUID       `json:"store_id,omitempty"`
}

// Role resolves the identity. A nil identity or an unknown level is Unresolved.
func (i *Identity) Role() Role {
	if i == nil {
		return RoleUnresolved
	}
	return FromLevel(i.Level)
}

// FromLevel maps a stored level onto a Role without guessing a default.
func FromLevel(level *enums.RoleLevel) Role {
	if level == nil {
		return RoleUnresolved
	}
	switch *level {
	case enums.RoleLevelAdmin:
		return RoleAdmin
	case enums.RoleLevelCustomer:
		return RoleCustomer
	case enums.RoleLevelOwner:
		return RoleOwner
	}
	return RoleUnresolved
}

// Resolved reports whether r grants any screen set.
func (r Role) Resolved() bool {
	return r == RoleAdmin || r == RoleCustomer || r == RoleOwner
}

func (r Role) String() string {
	return string(r)
}
