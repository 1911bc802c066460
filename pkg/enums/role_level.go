package enums

import "fmt"

// RoleLevel is the numeric privilege tier stored on a user record.
type RoleLevel int

const (
	RoleLevelAdmin    RoleLevel = 0
	RoleLevelCustomer RoleLevel = 1
	RoleLevelOwner    RoleLevel = 2
)

var validRoleLevels = []RoleLevel{
	RoleLevelAdmin,
	RoleLevelCustomer,
	RoleLevelOwner,
}

// String implements fmt.Stringer.
func (r RoleLevel) String() string {
	switch r {
	case RoleLevelAdmin:
		return "admin"
	case RoleLevelCustomer:
		return "customer"
	case RoleLevelOwner:
		return "owner"
	}
	return fmt.Sprintf("level(%d)", int(r))
}

// IsValid reports whether the value is a known RoleLevel.
func (r RoleLevel) IsValid() bool {
	for _, candidate := range validRoleLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRoleLevel converts a raw stored level into a RoleLevel.
func ParseRoleLevel(value int) (RoleLevel, error) {
	for _, candidate := range validRoleLevels {
		if int(candidate) == value {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid role level %d", value)
}
