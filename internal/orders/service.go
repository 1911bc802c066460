package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

const (
	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

// CheckoutInput is the customer's fulfillment choice.
type CheckoutInput struct {
	SessionID  string
	CustomerID uuid.UUID
	Mode       enums.FulfillmentMode
	Address    string
	Payment    enums.PaymentMethod
}

// Quote is a priced cart that has not been sent.
type Quote struct {
	StoreID   uuid.UUID   `json:"store_id"`
	StoreName string      `json:"store_name"`
	Lines     []cart.Line `json:"lines"`
	ItemCount int         `json:"item_count"`
	Summary   Summary     `json:"summary"`
	Message   string      `json:"message"`
}

// Result is a sent order.
type Result struct {
	OrderID uuid.UUID `json:"order_id"`
	Quote
	Receipt Receipt `json:"receipt"`
}

// Service prices and submits session carts.
type Service interface {
	Quote(ctx context.Context, input CheckoutInput) (*Quote, error)
	Checkout(ctx context.Context, input CheckoutInput) (*Result, error)
}

type service struct {
	carts     cart.Service
	profiles  ProfileFetcher
	messenger Messenger
	formatter MessageFormatter
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	breaker   *gobreaker.CircuitBreaker[Receipt]
	group     singleflight.Group
	now       func() time.Time
}

// ServiceParams groups the checkout collaborators.
type ServiceParams struct {
	Carts     cart.Service
	Profiles  ProfileFetcher
	Messenger Messenger
	Currency  string
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

// NewService builds the checkout service.
func NewService(p ServiceParams) (Service, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if p.Profiles == nil {
		return nil, fmt.Errorf("profile fetcher required")
	}
	if p.Messenger == nil {
		return nil, fmt.Errorf("messenger required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{
		carts:     p.Carts,
		profiles:  p.Profiles,
		messenger: p.Messenger,
		formatter: MessageFormatter{Currency: p.Currency},
		metrics:   p.Metrics,
		logg:      logg,
		now:       time.Now,
	}
	s.breaker = gobreaker.NewCircuitBreaker[Receipt](gobreaker.Settings{
		Name:    "messenger:" + p.Messenger.Name(),
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "messenger breaker state changed")
		},
	})
	return s, nil
}

func (s *service) Quote(ctx context.Context, input CheckoutInput) (*Quote, error) {
	c, err := s.carts.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, c, input)
}

// Checkout prices the cart, sends the message and clears the cart. The cart is
// left untouched when any step before the send fails. Once the message is out
// the order counts as submitted, even if the cleared cart cannot be saved.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Result, error) {
	var result *Result
	_, err := s.carts.WithCart(ctx, input.SessionID, func(c *cart.Cart) error {
		q, err := s.quote(ctx, c, input)
		if err != nil {
			return err
		}
		msg := OrderMessage{
			ID:         uuid.New(),
			StoreID:    q.StoreID,
			StoreName:  q.StoreName,
			CustomerID: input.CustomerID,
			Lines:      q.Lines,
			Summary:    q.Summary,
			Text:       q.Message,
			CreatedAt:  s.now().UTC(),
		}
		receipt, err := s.send(ctx, msg)
		if err != nil {
			return err
		}
		c.Clear()
		result = &Result{OrderID: msg.ID, Quote: *q, Receipt: receipt}
		return nil
	})
	if err != nil && result == nil {
		s.metrics.IncFailed(failureReason(err))
		return nil, err
	}

	s.metrics.IncSubmitted(string(result.Summary.Mode))
	ctx = s.logg.WithStoreID(ctx, result.StoreID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":    result.OrderID.String(),
		"total_cents": int64(result.Summary.Total),
		"driver":      result.Receipt.Driver,
	})
	if err != nil {
		s.logg.Error(ctx, "order sent but cart not cleared", err)
	} else {
		s.metrics.IncCartMutation("clear")
	}
	s.logg.Info(ctx, "order submitted")
	return result, nil
}

func (s *service) quote(ctx context.Context, c *cart.Cart, input CheckoutInput) (*Quote, error) {
	storeID, ok := c.StoreID()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	payment := input.Payment
	if payment == "" {
		payment = enums.DefaultPaymentMethod
	}
	if !payment.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	// Address is checked before the profile fetch so bad input never hits the store.
	if _, err := ComputeSummary(c, input.Mode, input.Address, nil); err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, storeID)
	if err != nil {
		return nil, err
	}
	summary, err := ComputeSummary(c, input.Mode, input.Address, profile)
	if err != nil {
		return nil, err
	}
	summary.Payment = payment

	return &Quote{
		StoreID:   storeID,
		StoreName: profile.Name,
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Summary:   summary,
		Message:   s.formatter.Format(c, summary, profile.Name),
	}, nil
}

// fetchProfile collapses concurrent lookups of the same store. The shared
// lookup ignores the first caller's cancellation so it cannot fail the others.
func (s *service) fetchProfile(ctx context.Context, storeID uuid.UUID) (*StoreProfile, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(storeID.String(), func() (any, error) {
		return s.profiles.GetProfile(shared, storeID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store profile")
	}
	profile, _ := v.(*StoreProfile)
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return profile, nil
}

func (s *service) send(ctx context.Context, msg OrderMessage) (Receipt, error) {
	start := s.now()
	receipt, err := s.breaker.Execute(func() (Receipt, error) {
		return s.messenger.Send(ctx, msg)
	})
	s.metrics.ObserveSend(s.messenger.Name(), s.now().Sub(start))
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "messenger unavailable")
		}
		if pkgerrors.As(err) != nil {
			return Receipt{}, err
		}
		return Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send order message")
	}
	if receipt.Driver == "" {
		receipt.Driver = s.messenger.Name()
	}
	return receipt, nil
}

func failureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		return "validation"
	case pkgerrors.CodeNotFound:
		return "store_not_found"
	case pkgerrors.CodeDependency:
		return "dependency"
	}
	return "internal"
}
