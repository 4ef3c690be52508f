package checkout

import (
	"context"
	"fmt"

	"github.com/minhvu-dev/teahouse/internal/cart"
	"github.com/minhvu-dev/teahouse/internal/orders"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
)

// DeliveryDetails is what the checkout view collects beyond the cart.
type DeliveryDetails struct {
	StoreID       int64               `json:"storeId"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Address       string              `json:"address"`
	Lat           float64             `json:"lat"`
	Lng           float64             `json:"lng"`
}

// Submitter is the slice of the order service checkout needs.
type Submitter interface {
	Create(ctx context.Context, payload orders.Submission) (*orders.Created, error)
}

// Service turns the cart into a submitted order. The cart is cleared
// only after the backend acknowledges; a rejected submission leaves it
// intact for the user to retry.
type Service struct {
	cart   *cart.Store
	orders Submitter
	log    *logger.Logger
}

func NewService(cartStore *cart.Store, submitter Submitter, log *logger.Logger) (*Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("order submitter is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{cart: cartStore, orders: submitter, log: log}, nil
}

// PlaceOrder flattens the current cart with the delivery details,
// submits it, and clears the cart on success.
func (s *Service) PlaceOrder(ctx context.Context, details DeliveryDetails) (*orders.Created, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	payload := orders.Submission{
		StoreID:         details.StoreID,
		PaymentMethod:   details.PaymentMethod,
		ShippingAddress: details.Address,
		Lat:             details.Lat,
		Lng:             details.Lng,
		Items:           orders.ItemsFromLines(lines),
	}

	created, err := s.orders.Create(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.cart.Clear()
	s.log.Info(s.log.WithOrderID(ctx, created.OrderNumber), "order submitted")
	return created, nil
}
