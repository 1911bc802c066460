package roles

import (
	"testing"

	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(v int) *enums.RoleLevel {
	l := enums.RoleLevel(v)
	return &l
}

func screenNames(set ScreenSet) []string {
	names := make([]string, 0, len(set.Screens))
	for _, s := range set.Screens {
		names = append(names, s.Name)
	}
	return names
}

func TestScreenTableCoversEveryRole(t *testing.T) {
	for _, r := range All {
		_, ok := screenTable[r]
		assert.True(t, ok, "missing screen table entry for %s", r)
	}
	assert.Len(t, screenTable, len(All))
}

func TestFromLevel(t *testing.T) {
	cases := []struct {
		name  string
		level *enums.RoleLevel
		want  Role
	}{
		{"admin", level(0), RoleAdmin},
		{"customer", level(1), RoleCustomer},
		{"owner", level(2), RoleOwner},
		{"unknown", level(7), RoleUnresolved},
		{"negative", level(-1), RoleUnresolved},
		{"absent", nil, RoleUnresolved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromLevel(tc.level))
		})
	}
}

func TestRouteOwnerGetsOwnerSetOnly(t *testing.T) {
	storeID := uuid.New()
	set := Route(&Identity{UserID: uuid.New(), Level: level(2), StoreID: &storeID})

	require.False(t, set.Waiting)
	assert.Equal(t, RoleOwner, set.Role)
	assert.Equal(t, []string{"products", "categories", "store_settings", "profile"}, screenNames(set))
	for _, s := range set.Screens {
		assert.NotEqual(t, "store_management", s.Name)
		assert.NotEqual(t, "cart", s.Name)
	}
}

func TestRouteAdminAndCustomer(t *testing.T) {
	admin := Route(&Identity{Level: level(0)})
	assert.Equal(t, []string{"store_management", "profile"}, screenNames(admin))

	customer := Route(&Identity{Level: level(1)})
	assert.Equal(t, []string{"marketplace", "menu", "cart", "checkout", "profile"}, screenNames(customer))
}

func TestRouteAbsentIdentityWaits(t *testing.T) {
	set := Route(nil)

	assert.True(t, set.Waiting)
	assert.Equal(t, RoleUnresolved, set.Role)
	assert.Empty(t, set.Screens)
	assert.NotNil(t, set.Screens)
}

func TestRouteUnknownLevelWaits(t *testing.T) {
	set := Route(&Identity{UserID: uuid.New(), Level: level(9)})
	assert.True(t, set.Waiting)
	assert.Empty(t, set.Screens)
}

func TestScreensForUnknownVariantWaits(t *testing.T) {
	set := ScreensFor(Role("superuser"))
	assert.True(t, set.Waiting)
	assert.Equal(t, RoleUnresolved, set.Role)
}

func TestScreenSetsAreDisjoint(t *testing.T) {
	seen := map[string]Role{}
	for _, r := range All {
		for _, s := range screenTable[r] {
			owner, dup := seen[s.Name]
			assert.False(t, dup, "screen %s shared by %s and %s", s.Name, owner, r)
			seen[s.Name] = r
		}
	}
}

func TestScreensForReturnsFreshSlice(t *testing.T) {
	first := ScreensFor(RoleAdmin)
	first.Screens[0].Name = "mutated"
	assert.Equal(t, "store_management", ScreensFor(RoleAdmin).Screens[0].Name)
}
