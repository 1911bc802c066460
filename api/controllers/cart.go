package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/foodorder-backend/api/middleware"
	"github.com/angelmondragon/foodorder-backend/api/responses"
	"github.com/angelmondragon/foodorder-backend/api/validators"
	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/internal/users"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
)

type cartView struct {
	State     cart.State  `json:"state"`
	StoreID   *uuid.UUID  `json:"store_id,omitempty"`
	Lines     []cart.Line `json:"lines"`
	ItemCount int         `json:"item_count"`
	Subtotal  money.Cents `json:"subtotal_cents"`
	Display   string      `json:"subtotal"`
}

func newCartView(c *cart.Cart) cartView {
	view := cartView{
		State:     c.State(),
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
		Display:   c.Subtotal().String(),
	}
	if storeID, ok := c.StoreID(); ok {
		view.StoreID = &storeID
	}
	if view.Lines == nil {
		view.Lines = []cart.Line{}
	}
	return view
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type checkoutRequest struct {
	Mode    string `json:"mode" validate:"required"`
	Address string `json:"address"`
	Payment string `json:"payment_method"`
}

// addressReader supplies the saved delivery address when the request has none.
type addressReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

// cartSession keys the cart by the authenticated user.
func cartSession(r *http.Request) (string, uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID.String(), userID, nil
}

func cartUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		sessionID, _, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartAddItem adds one unit of a product. A product of another store starts
// a new cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		sessionID, _, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.AddItem(r.Context(), sessionID, body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// CartRemoveItem removes one unit of a product.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		sessionID, _, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.RemoveItem(r.Context(), sessionID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, cartUnavailable())
			return
		}
		sessionID, _, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CartQuote prices the cart for the chosen fulfillment without sending it.
func CartQuote(svc orders.Service, profiles addressReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		input, err := checkoutInput(r, profiles)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CartCheckout sends the order to the store and empties the cart.
func CartCheckout(svc orders.Service, profiles addressReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		input, err := checkoutInput(r, profiles)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func checkoutInput(r *http.Request, profiles addressReader) (orders.CheckoutInput, error) {
	sessionID, userID, err := cartSession(r)
	if err != nil {
		return orders.CheckoutInput{}, err
	}

	var body checkoutRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return orders.CheckoutInput{}, err
	}

	mode, err := enums.ParseFulfillmentMode(body.Mode)
	if err != nil {
		return orders.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment mode").
			WithDetails(map[string]any{"field": "mode"})
	}
	payment, err := enums.ParsePaymentMethod(body.Payment)
	if err != nil {
		return orders.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
			WithDetails(map[string]any{"field": "payment_method"})
	}

	address := body.Address
	if strings.TrimSpace(address) == "" && mode == enums.FulfillmentDelivery && profiles != nil {
		if profile, err := profiles.GetProfile(r.Context(), userID); err == nil && profile != nil {
			address = strings.TrimSpace(profile.Address)
		}
	}

	return orders.CheckoutInput{
		SessionID:  sessionID,
		CustomerID: userID,
		Mode:       mode,
		Address:    address,
		Payment:    payment,
	}, nil
}
