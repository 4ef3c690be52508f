package cart

import (
	"github.com/google/uuid"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	"github.com/shopspring/decimal"
)

// Options is the optional preparation pair on a drink.
type Options struct {
	Sugar enums.Sweetness `json:"sugar,omitempty"`
	Ice   enums.IceLevel  `json:"ice,omitempty"`
}

// Line is one purchasable unit in the cart: a product configured with
// size, toppings, and preparation options. Identity is a generated
// token assigned at creation; it is deliberately not derived from the
// product fields, so two additions of the same configuration are two
// distinct lines.
type Line struct {
	ID        uuid.UUID       `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Size      enums.Size      `json:"size"`
	Toppings  []string        `json:"toppings"`
	Quantity  int             `json:"quantity"`
	Note      string          `json:"note,omitempty"`
	Options   *Options        `json:"options,omitempty"`
}

// clone detaches the line from any shared backing state.
func (l Line) clone() Line {
	out := l
	out.Toppings = append([]string(nil), l.Toppings...)
	if l.Options != nil {
		options := *l.Options
		out.Options = &options
	}
	return out
}

// NewLine is the caller-supplied part of a Line; the store assigns
// identity. UnitPrice arrives inclusive of size and topping
// adjustments; the store never reprices.
type NewLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Image     string
	Size      enums.Size
	Toppings  []string
	Quantity  int
	Note      string
	Options   *Options
}
