package orders

import (
	"github.com/minhvu-dev/teahouse/internal/cart"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	"github.com/shopspring/decimal"
)

// Submission is the flattened checkout payload: cart lines plus
// delivery metadata, sent once and not retained afterwards.
type Submission struct {
	StoreID         int64               `json:"storeId"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	ShippingAddress string              `json:"shippingAddress"`
	Lat             float64             `json:"lat"`
	Lng             float64             `json:"lng"`
	Items           []SubmissionItem    `json:"items"`
}

// SubmissionItem is the wire shape of one cart line.
type SubmissionItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Size      enums.Size      `json:"size,omitempty"`
	Toppings  []string        `json:"toppings,omitempty"`
	Options   *ItemOptions    `json:"options,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// ItemOptions carries the preparation pair onto the wire.
type ItemOptions struct {
	Sugar string `json:"sugar,omitempty"`
	Ice   string `json:"ice,omitempty"`
}

// LinesFromItems projects a past order's items back into cart inputs,
// in item order. Identity is dropped on purpose: the cart assigns a
// fresh one per line, and the item price already includes size and
// topping adjustments, so no repricing happens here.
func LinesFromItems(items []Item) []cart.NewLine {
	lines := make([]cart.NewLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cart.NewLine{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			UnitPrice: item.Price,
			Image:     item.ImageURL,
			Size:      enums.Size(item.Size),
			Toppings:  item.Toppings,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// ItemsFromLines projects cart lines into submission items, in cart
// order.
func ItemsFromLines(lines []cart.Line) []SubmissionItem {
	items := make([]SubmissionItem, 0, len(lines))
	for _, line := range lines {
		item := SubmissionItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Size:      line.Size,
			Toppings:  line.Toppings,
			Note:      line.Note,
		}
		if line.Options != nil {
			item.Options = &ItemOptions{
				Sugar: string(line.Options.Sugar),
				Ice:   string(line.Options.Ice),
			}
		}
		items = append(items, item)
	}
	return items
}
