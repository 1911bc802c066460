package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/foodorder-backend/internal/stores"
	"github.com/angelmondragon/foodorder-backend/pkg/db/dbtest"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	client := dbtest.Open(t)
	storeRepo := stores.NewRepository(client.DB())
	store, err := storeRepo.Create(context.Background(), stores.CreateStoreDTO{Name: "Pizzaria"})
	require.NoError(t, err)

	svc, err := NewService(NewRepository(client.DB()), storeRepo, nil, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, store.ID
}

func TestCreateProductParsesPriceAndDefaultsImage(t *testing.T) {
	svc, storeID := newTestService(t)

	p, err := svc.CreateProduct(context.Background(), storeID, ProductInput{
		Name:     " Pizza ",
		Price:    "29,90",
		Category: " Pizzas ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pizza", p.Name)
	assert.Equal(t, int64(2990), p.PriceCents)
	assert.Equal(t, "29.90", p.Price)
	assert.Equal(t, "Pizzas", p.Category)
	assert.Equal(t, PlaceholderImageURL, p.ImageURL)
}

func TestCreateProductValidation(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, storeID, ProductInput{Name: "", Price: "10"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, storeID, ProductInput{Name: "Pizza", Price: "abc"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, storeID, ProductInput{Name: "Pizza", Price: "-1"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Would wrap around int64 instead of failing.
	_, err = svc.CreateProduct(ctx, storeID, ProductInput{Name: "Pizza", Price: "100000000000000000,00"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, uuid.New(), ProductInput{Name: "Pizza", Price: "10"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsFiltersByCategory(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	for _, in := range []ProductInput{
		{Name: "Pizza", Price: "29.90", Category: "Pizzas"},
		{Name: "Coca", Price: "6", Category: "Bebidas"},
		{Name: "Calzone", Price: "31", Category: "Pizzas"},
	} {
		_, err := svc.CreateProduct(ctx, storeID, in)
		require.NoError(t, err)
	}

	all, err := svc.ListProducts(ctx, storeID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Calzone", all[0].Name)

	pizzas, err := svc.ListProducts(ctx, storeID, " Pizzas ")
	require.NoError(t, err)
	assert.Len(t, pizzas, 2)
}

func TestUpdateAndDeleteProductAreStoreScoped(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, storeID, ProductInput{Name: "Pizza", Price: "29.90"})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, uuid.New(), p.ID, ProductInput{Name: "Hack", Price: "1"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	updated, err := svc.UpdateProduct(ctx, storeID, p.ID, ProductInput{Name: "Pizza G", Price: "39.9", ImageURL: "https://img/p.png"})
	require.NoError(t, err)
	assert.Equal(t, int64(3990), updated.PriceCents)
	assert.Equal(t, "https://img/p.png", updated.ImageURL)

	assert.True(t, pkgerrors.HasCode(svc.DeleteProduct(ctx, uuid.New(), p.ID), pkgerrors.CodeNotFound))
	require.NoError(t, svc.DeleteProduct(ctx, storeID, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCategoriesAreDistinctPerStore(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, storeID, CategoryInput{Name: " Bebidas "})
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", c.Name)

	_, err = svc.CreateCategory(ctx, storeID, CategoryInput{Name: "Bebidas"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	_, err = svc.CreateCategory(ctx, storeID, CategoryInput{Name: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	list, err := svc.ListCategories(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteCategory(ctx, storeID, c.ID))
	assert.True(t, pkgerrors.HasCode(svc.DeleteCategory(ctx, storeID, c.ID), pkgerrors.CodeNotFound))
}

func TestCartProductAdapter(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, storeID, ProductInput{Name: "Pizza", Price: "29.90"})
	require.NoError(t, err)

	cp, gotStore, err := svc.CartProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, storeID, gotStore)
	assert.Equal(t, "Pizza", cp.Name)
	require.NotNil(t, cp.Price)
	assert.Equal(t, money.Cents(2990), *cp.Price)

	_, _, err = svc.CartProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSubscribeReceivesSnapshotsOnChange(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := svc.Subscribe(ctx, storeID)
	require.NoError(t, err)
	first := receive(t, ch)
	assert.Empty(t, first.Products)

	_, err = svc.CreateProduct(context.Background(), storeID, ProductInput{Name: "Pizza", Price: "29.90"})
	require.NoError(t, err)
	second := receive(t, ch)
	require.Len(t, second.Products, 1)
	assert.Greater(t, second.Version, first.Version)

	_, err = svc.CreateCategory(context.Background(), storeID, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)
	third := receive(t, ch)
	assert.Len(t, third.Products, 1)
	assert.Len(t, third.Categories, 1)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not released")
	}
}

func TestSubscribeUnknownStore(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Subscribe(context.Background(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
