package checkout

import (
	"context"
	"testing"

	"github.com/minhvu-dev/teahouse/internal/cart"
	"github.com/minhvu-dev/teahouse/internal/orders"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
	"github.com/shopspring/decimal"
)

type stubSubmitter struct {
	payload *orders.Submission
	err     error
}

func (s *stubSubmitter) Create(ctx context.Context, payload orders.Submission) (*orders.Created, error) {
	s.payload = &payload
	if s.err != nil {
		return nil, s.err
	}
	return &orders.Created{ID: 9, OrderNumber: "TH-000009"}, nil
}

func details() DeliveryDetails {
	return DeliveryDetails{
		StoreID:       1,
		PaymentMethod: enums.PaymentMethodMomo,
		Address:       "12 Nguyen Hue, Q1",
		Lat:           10.7769,
		Lng:           106.7009,
	}
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore()
	store.Add(cart.NewLine{ProductID: 12, Name: "oolong milk tea", UnitPrice: decimal.NewFromInt(45000), Size: enums.SizeL, Quantity: 2})
	return store
}

func newService(t *testing.T, store *cart.Store, submitter Submitter) *Service {
	t.Helper()
	svc, err := NewService(store, submitter, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPlaceOrderClearsCartOnSuccess(t *testing.T) {
	t.Parallel()

	store := filledCart(t)
	submitter := &stubSubmitter{}
	svc := newService(t, store, submitter)

	created, err := svc.PlaceOrder(context.Background(), details())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.OrderNumber != "TH-000009" {
		t.Fatalf("unexpected order %+v", created)
	}
	if store.TotalItems() != 0 {
		t.Fatal("cart should be empty after a successful submission")
	}
	if submitter.payload == nil || len(submitter.payload.Items) != 1 {
		t.Fatalf("unexpected payload %+v", submitter.payload)
	}
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	t.Parallel()

	store := filledCart(t)
	submitter := &stubSubmitter{err: pkgerrors.New(pkgerrors.CodeDependency, "backend down")}
	svc := newService(t, store, submitter)

	if _, err := svc.PlaceOrder(context.Background(), details()); err == nil {
		t.Fatal("expected submission error")
	}
	if store.TotalItems() != 2 {
		t.Fatal("cart must survive a failed submission")
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	submitter := &stubSubmitter{}
	svc := newService(t, cart.NewStore(), submitter)

	_, err := svc.PlaceOrder(context.Background(), details())
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if submitter.payload != nil {
		t.Fatal("empty cart must not reach the backend")
	}
}
