package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/angelmondragon/foodorder-backend/pkg/redis"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

const (
	lockTTL        = 10 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

// ProductResolver maps a product id to the cart view of it and its store.
type ProductResolver interface {
	CartProduct(ctx context.Context, productID uuid.UUID) (Product, uuid.UUID, error)
}

// Locker provides a cross-process lock; used when carts live in redis.
type Locker interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error)
}

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	// WithCart runs fn with exclusive access to the session cart. The cart is
	// saved afterwards only when fn returns nil.
	WithCart(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
}

type service struct {
	store    Store
	products ProductResolver
	locker   Locker
	metrics  *metrics.OrderMetrics

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewService builds a cart service. locker may be nil for single-process setups.
func NewService(store Store, products ProductResolver, locker Locker, m *metrics.OrderMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	return &service{
		store:    store,
		products: products,
		locker:   locker,
		metrics:  m,
		locks:    map[string]*sessionLock{},
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidProduct, "product id is required")
	}
	// Resolve outside the lock so a slow catalog does not stall the session.
	p, storeID, err := s.products.CartProduct(ctx, productID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
	}
	c, err := s.WithCart(ctx, sessionID, func(c *Cart) error {
		return c.Add(p, storeID)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("add")
	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error) {
	c, err := s.WithCart(ctx, sessionID, func(c *Cart) error {
		c.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("remove")
	return c, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	_, err := s.WithCart(ctx, sessionID, func(c *Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncCartMutation("clear")
	return nil
}

func (s *service) WithCart(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

// lock serializes mutations of one session inside this process and, when a
// Locker is configured, across processes.
func (s *service) lock(ctx context.Context, sessionID string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	local := func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}

	if s.locker == nil {
		return local, nil
	}

	release, err := s.acquireRemote(ctx, sessionID)
	if err != nil {
		local()
		return nil, err
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		_ = release(context.WithoutCancel(ctx))
		local()
	}, nil
}

func (s *service) acquireRemote(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	name := "cart:" + sessionID
	for {
		release, err := s.locker.Lock(ctx, name, lockTTL)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, redis.ErrLockHeld) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "lock cart")
		case <-time.After(lockRetryDelay):
		}
	}
}

func validateSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
