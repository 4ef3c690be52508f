package orders

import (
	"context"
	"fmt"

	"github.com/minhvu-dev/teahouse/internal/cart"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/validate"
)

// Caller is the slice of the backend client the order service needs.
type Caller interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service submits orders and reads order history.
type Service struct {
	api Caller
}

func NewService(api Caller) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	return &Service{api: api}, nil
}

type submissionRules struct {
	StoreID         int64   `json:"storeId" validate:"gt=0"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required"`
	ShippingAddress string  `json:"shippingAddress" validate:"required"`
	Lat             float64 `json:"lat" validate:"latitude"`
	Lng             float64 `json:"lng" validate:"longitude"`
}

// Create submits the flattened payload and returns the created order
// identifier. The payload is checked here so a malformed submission
// never leaves the client.
func (s *Service) Create(ctx context.Context, payload Submission) (*Created, error) {
	if len(payload.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !payload.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	rules := submissionRules{
		StoreID:         payload.StoreID,
		PaymentMethod:   string(payload.PaymentMethod),
		ShippingAddress: payload.ShippingAddress,
		Lat:             payload.Lat,
		Lng:             payload.Lng,
	}
	if err := validate.Struct(rules); err != nil {
		return nil, err
	}

	var created Created
	if err := s.api.Post(ctx, "/orders", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// List returns the signed-in user's orders, newest first per the
// backend's ordering.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := s.api.Get(ctx, "/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reorder finds a past order in the user's list and projects its
// items into cart inputs. An unknown id or an order without items is a
// not-found, matching how the reorder view reports it.
func (s *Service) Reorder(ctx context.Context, orderID int64) ([]cart.NewLine, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, order := range list {
		if order.ID != orderID {
			continue
		}
		if len(order.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order has no items to reorder")
		}
		return LinesFromItems(order.Items), nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

// History returns the status change trail for one order.
func (s *Service) History(ctx context.Context, orderID int64) ([]StatusChange, error) {
	var out []StatusChange
	if err := s.api.Get(ctx, fmt.Sprintf("/orders/%d/history", orderID), &out); err != nil {
		return nil, err
	}
	return out, nil
}
