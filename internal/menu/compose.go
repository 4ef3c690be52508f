package menu

import (
	"github.com/minhvu-dev/teahouse/internal/cart"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/validate"
	"github.com/shopspring/decimal"
)

// Size M pours less than the L base price. The menu prices everything
// at L; M is an absolute discount, not a ratio.
var sizeAdjustments = map[enums.Size]decimal.Decimal{
	enums.SizeM: decimal.NewFromInt(-14000),
	enums.SizeL: decimal.Zero,
}

// ComposeInput is what the product detail view hands over before a
// line may enter the cart. Validation happens here; the cart store
// accepts whatever it is given.
type ComposeInput struct {
	Product    Product         `json:"product"`
	Size       enums.Size      `json:"size" validate:"required"`
	ToppingIDs []int64         `json:"toppingIds"`
	Quantity   int             `json:"quantity" validate:"min=1"`
	Note       string          `json:"note"`
	Sugar      enums.Sweetness `json:"sugar"`
	Ice        enums.IceLevel  `json:"ice"`
}

// ComposeLine prices a configured drink and shapes it into a cart
// line. The unit price folds in the size adjustment and every selected
// topping, so downstream consumers multiply by quantity and nothing
// else.
func ComposeLine(input ComposeInput, toppings []Topping) (cart.NewLine, error) {
	if err := validate.Struct(input); err != nil {
		return cart.NewLine{}, err
	}
	if input.Product.ID <= 0 {
		return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Size.IsValid() {
		return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown size")
	}
	if input.Sugar != "" && !input.Sugar.IsValid() {
		return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown sweetness level")
	}
	if input.Ice != "" && !input.Ice.IsValid() {
		return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown ice level")
	}

	byID := make(map[int64]Topping, len(toppings))
	for _, topping := range toppings {
		byID[topping.ID] = topping
	}

	unitPrice := input.Product.Price.Add(sizeAdjustments[input.Size])
	names := make([]string, 0, len(input.ToppingIDs))
	for _, id := range input.ToppingIDs {
		topping, ok := byID[id]
		if !ok {
			return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown topping selected")
		}
		unitPrice = unitPrice.Add(topping.Price)
		names = append(names, topping.Name)
	}

	if unitPrice.IsNegative() {
		return cart.NewLine{}, pkgerrors.New(pkgerrors.CodeValidation, "configured price is negative")
	}

	var options *cart.Options
	if input.Sugar != "" || input.Ice != "" {
		options = &cart.Options{Sugar: input.Sugar, Ice: input.Ice}
	}

	return cart.NewLine{
		ProductID: input.Product.ID,
		Name:      input.Product.Name,
		UnitPrice: unitPrice,
		Image:     input.Product.Image,
		Size:      input.Size,
		Toppings:  names,
		Quantity:  input.Quantity,
		Note:      input.Note,
		Options:   options,
	}, nil
}
