package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

type catalogStub struct {
	products map[uuid.UUID]cart.Product
	storeID  uuid.UUID
}

func (c *catalogStub) CartProduct(_ context.Context, id uuid.UUID) (cart.Product, uuid.UUID, error) {
	p, ok := c.products[id]
	if !ok {
		return cart.Product{}, uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, c.storeID, nil
}

type profileStub struct {
	mu      sync.Mutex
	profile *StoreProfile
	err     error
	calls   int
}

func (p *profileStub) GetProfile(context.Context, uuid.UUID) (*StoreProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.profile, p.err
}

type messengerStub struct {
	mu   sync.Mutex
	sent []OrderMessage
	err  error
}

func (m *messengerStub) Name() string { return "stub" }

func (m *messengerStub) Send(_ context.Context, msg OrderMessage) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Receipt{}, m.err
	}
	m.sent = append(m.sent, msg)
	return Receipt{Reference: msg.ID.String()}, nil
}

type fixture struct {
	carts     cart.Service
	profiles  *profileStub
	messenger *messengerStub
	registry  *prometheus.Registry
	svc       Service
	pizzaID   uuid.UUID
	storeID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storeID := uuid.New()
	pizza := cart.Product{ID: uuid.New(), Name: "Pizza", Price: priced(2990)}
	catalog := &catalogStub{products: map[uuid.UUID]cart.Product{pizza.ID: pizza}, storeID: storeID}

	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)
	carts, err := cart.NewService(cart.NewMemoryStore(), catalog, nil, m)
	require.NoError(t, err)

	f := &fixture{
		carts:     carts,
		profiles:  &profileStub{profile: &StoreProfile{ID: storeID, Name: "Pizzaria", DeliveryFee: 500}},
		messenger: &messengerStub{},
		registry:  reg,
		pizzaID:   pizza.ID,
		storeID:   storeID,
	}
	f.svc, err = NewService(ServiceParams{Carts: carts, Profiles: f.profiles, Messenger: f.messenger, Metrics: m})
	require.NoError(t, err)
	return f
}

func (f *fixture) addPizza(t *testing.T, session string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.carts.AddItem(context.Background(), session, f.pizzaID)
		require.NoError(t, err)
	}
}

func deliveryInput(session string) CheckoutInput {
	return CheckoutInput{
		SessionID:  session,
		CustomerID: uuid.New(),
		Mode:       enums.FulfillmentDelivery,
		Address:    "Rua A, 123",
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCheckoutSendsAndClearsCart(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 2)

	res, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
	require.NoError(t, err)

	assert.Equal(t, "64.80", res.Summary.Total.String())
	assert.Equal(t, enums.PaymentMethodPix, res.Summary.Payment)
	assert.Equal(t, "stub", res.Receipt.Driver)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, res.OrderID, f.messenger.sent[0].ID)
	assert.Contains(t, f.messenger.sent[0].Text, "*TOTAL FINAL: R$ 64.80*")

	c, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 1.0, counterValue(t, f.registry, "orders_submitted_total", "delivery"))
}

func TestCheckoutKeepsCartWhenSendFails(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	f.messenger.err = errors.New("network down")

	_, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.True(t, pkgerrors.IsRetryable(err))

	c, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())
}

type flakyStore struct {
	*cart.MemoryStore
	mu       sync.Mutex
	failSave bool
}

func (s *flakyStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	s.mu.Lock()
	fail := s.failSave
	s.mu.Unlock()
	if fail {
		return errors.New("redis down")
	}
	return s.MemoryStore.Save(ctx, sessionID, c)
}

func TestCheckoutSucceedsWhenCartSaveFailsAfterSend(t *testing.T) {
	f := newFixture(t)
	store := &flakyStore{MemoryStore: cart.NewMemoryStore()}
	carts, err := cart.NewService(store, &catalogStub{
		products: map[uuid.UUID]cart.Product{f.pizzaID: {ID: f.pizzaID, Name: "Pizza", Price: priced(2990)}},
		storeID:  f.storeID,
	}, nil, nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Carts: carts, Profiles: f.profiles, Messenger: f.messenger})
	require.NoError(t, err)

	_, err = carts.AddItem(context.Background(), "s1", f.pizzaID)
	require.NoError(t, err)
	store.mu.Lock()
	store.failSave = true
	store.mu.Unlock()

	res, err := svc.Checkout(context.Background(), deliveryInput("s1"))
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, res.OrderID, f.messenger.sent[0].ID)
}

type ctxProfileStub struct{}

func (ctxProfileStub) GetProfile(ctx context.Context, id uuid.UUID) (*StoreProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &StoreProfile{ID: id, Name: "Pizzaria"}, nil
}

func TestFetchProfileIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(ServiceParams{Carts: f.carts, Profiles: ctxProfileStub{}, Messenger: f.messenger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	profile, err := svc.(*service).fetchProfile(ctx, f.storeID)
	require.NoError(t, err)
	assert.Equal(t, f.storeID, profile.ID)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), deliveryInput("empty"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.messenger.sent)
}

func TestCheckoutShortAddressSkipsProfileFetch(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	input := deliveryInput("s1")
	input.Address = "Rua"

	_, err := f.svc.Checkout(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "address required", pkgerrors.As(err).Message())
	assert.Zero(t, f.profiles.calls)
}

func TestCheckoutPropagatesProfileFailure(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	f.profiles.profile = nil
	f.profiles.err = errors.New("db down")

	_, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, f.messenger.sent)
}

func TestCheckoutMissingStoreIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	f.profiles.profile = nil

	_, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCheckoutBreakerOpensAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	f.messenger.err = errors.New("network down")

	for i := 0; i < breakerFailures; i++ {
		_, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
		require.Error(t, err)
	}

	f.messenger.err = nil
	_, err := f.svc.Checkout(context.Background(), deliveryInput("s1"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, f.messenger.sent)
}

func TestQuoteDoesNotSend(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 2)
	input := deliveryInput("s1")
	input.Mode = enums.FulfillmentPickup
	input.Address = ""
	input.Payment = enums.PaymentMethodCard

	q, err := f.svc.Quote(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "59.80", q.Summary.Total.String())
	assert.Equal(t, 2, q.ItemCount)
	assert.Equal(t, "Pizzaria", q.StoreName)
	assert.Contains(t, q.Message, "*Pagamento:* Cartão")
	assert.Empty(t, f.messenger.sent)

	c, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount())
}

func TestQuoteRejectsUnknownPayment(t *testing.T) {
	f := newFixture(t)
	f.addPizza(t, "s1", 1)
	input := deliveryInput("s1")
	input.Payment = enums.PaymentMethod("bitcoin")

	_, err := f.svc.Quote(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
