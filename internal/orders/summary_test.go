package orders

import (
	"testing"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

func priced(cents money.Cents) *money.Cents { return &cents }

func pizzaCart(t *testing.T, storeID uuid.UUID, qty int) *cart.Cart {
	t.Helper()
	c := cart.New()
	pizza := cart.Product{ID: uuid.New(), Name: "Pizza", Price: priced(2990)}
	for i := 0; i < qty; i++ {
		require.NoError(t, c.Add(pizza, storeID))
	}
	return c
}

func TestComputeSummaryDelivery(t *testing.T) {
	storeID := uuid.New()
	c := pizzaCart(t, storeID, 2)
	profile := &StoreProfile{ID: storeID, Name: "Pizzaria", DeliveryFee: 500}

	summary, err := ComputeSummary(c, enums.FulfillmentDelivery, "Rua A, 123", profile)
	require.NoError(t, err)

	assert.Equal(t, "59.80", summary.Subtotal.String())
	assert.Equal(t, "5.00", summary.DeliveryFee.String())
	assert.Equal(t, "64.80", summary.Total.String())
	assert.Equal(t, "Rua A, 123", summary.Address)
}

func TestComputeSummaryPickupIgnoresFee(t *testing.T) {
	storeID := uuid.New()
	c := pizzaCart(t, storeID, 1)
	profile := &StoreProfile{ID: storeID, DeliveryFee: 1200}

	summary, err := ComputeSummary(c, enums.FulfillmentPickup, "", profile)
	require.NoError(t, err)

	assert.Equal(t, money.Cents(0), summary.DeliveryFee)
	assert.Equal(t, summary.Subtotal, summary.Total)
	assert.Empty(t, summary.Address)
}

func TestComputeSummaryAddressThreshold(t *testing.T) {
	storeID := uuid.New()
	c := pizzaCart(t, storeID, 1)
	profile := &StoreProfile{ID: storeID, DeliveryFee: 500}

	_, err := ComputeSummary(c, enums.FulfillmentDelivery, "Rua1", profile)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "address required", pkgerrors.As(err).Message())

	_, err = ComputeSummary(c, enums.FulfillmentDelivery, "Rua 1", profile)
	require.NoError(t, err)

	_, err = ComputeSummary(c, enums.FulfillmentDelivery, "çãoéí", profile)
	require.NoError(t, err, "length counts characters, not bytes")

	summary, err := ComputeSummary(c, enums.FulfillmentDelivery, " Rua1", profile)
	require.NoError(t, err, "length counts the address as typed")
	assert.Equal(t, "Rua1", summary.Address)

	_, err = ComputeSummary(c, enums.FulfillmentDelivery, "      ", profile)
	require.Error(t, err)
}

func TestComputeSummaryRejectsUnknownMode(t *testing.T) {
	_, err := ComputeSummary(cart.New(), enums.FulfillmentMode("drone"), "Rua A, 123", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestComputeSummaryTotalIsExact(t *testing.T) {
	storeID := uuid.New()
	c := cart.New()
	soda := cart.Product{ID: uuid.New(), Name: "Soda", Price: priced(10)}
	for i := 0; i < 30; i++ {
		require.NoError(t, c.Add(soda, storeID))
	}
	profile := &StoreProfile{ID: storeID, DeliveryFee: 20}

	summary, err := ComputeSummary(c, enums.FulfillmentDelivery, "Rua A, 123", profile)
	require.NoError(t, err)
	assert.Equal(t, "3.00", summary.Subtotal.String())
	assert.Equal(t, "3.20", summary.Total.String())
}
