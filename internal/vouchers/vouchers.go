package vouchers

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
	"github.com/shopspring/decimal"
)

// Voucher is a discount code the user can hold or redeem with points.
type Voucher struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	DiscountPercent int       `json:"discountPercent"`
	RequiredPoints  int       `json:"requiredPoints"`
	ExpiryDate      time.Time `json:"expiryDate"`
	IsUsed          bool      `json:"isUsed,omitempty"`
}

// ValidationResult is the outcome of checking a code against an order
// amount.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message,omitempty"`
}

// Caller is the slice of the backend client the voucher service needs.
type Caller interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service reads and redeems vouchers.
type Service struct {
	api Caller
	log *logger.Logger
}

func NewService(api Caller, log *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{api: api, log: log}, nil
}

// Available lists vouchers anyone may redeem. When the backend is
// unreachable or returns an empty list, it serves the fixed default
// set instead of failing the view.
func (s *Service) Available(ctx context.Context) []Voucher {
	var out []Voucher
	if err := s.api.Get(ctx, "/vouchers/available", &out); err != nil {
		s.log.Warn(s.log.WithField(ctx, "fallback", pkgerrors.Dump(err)), "voucher listing unavailable, serving defaults")
		return DefaultVouchers(time.Now())
	}
	if len(out) == 0 {
		return DefaultVouchers(time.Now())
	}
	return out
}

// Mine lists the vouchers held by the signed-in user.
func (s *Service) Mine(ctx context.Context) ([]Voucher, error) {
	var out []Voucher
	if err := s.api.Get(ctx, "/vouchers/my-vouchers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Redeem trades loyalty points for the voucher with the given id.
func (s *Service) Redeem(ctx context.Context, voucherID int64) (*Voucher, error) {
	var out Voucher
	if err := s.api.Post(ctx, fmt.Sprintf("/vouchers/redeem/%d", voucherID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks a voucher code against the order amount.
func (s *Service) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (ValidationResult, error) {
	if code == "" {
		return ValidationResult{}, pkgerrors.New(pkgerrors.CodeValidation, "voucher code is required")
	}

	body := map[string]any{"code": code, "orderAmount": orderAmount}
	var out ValidationResult
	if err := s.api.Post(ctx, "/vouchers/validate", body, &out); err != nil {
		return ValidationResult{}, err
	}
	return out, nil
}

// DefaultVouchers is the fixed fallback set, expiring 30 days out.
func DefaultVouchers(now time.Time) []Voucher {
	expiry := now.Add(30 * 24 * time.Hour)
	return []Voucher{
		{ID: 1, Code: "WELCOME10", DiscountPercent: 10, RequiredPoints: 0, ExpiryDate: expiry},
		{ID: 2, Code: "SAVE15", DiscountPercent: 15, RequiredPoints: 100, ExpiryDate: expiry},
		{ID: 3, Code: "VIP20", DiscountPercent: 20, RequiredPoints: 200, ExpiryDate: expiry},
	}
}
