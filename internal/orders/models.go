package orders

import (
	"time"

	"github.com/minhvu-dev/teahouse/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is the read model the history and profile views project.
type Order struct {
	ID                int64             `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	Date              time.Time         `json:"date"`
	Status            enums.OrderStatus `json:"status"`
	Items             []Item            `json:"items"`
	Subtotal          decimal.Decimal   `json:"subtotal"`
	ShippingFee       decimal.Decimal   `json:"shippingFee"`
	Discount          decimal.Decimal   `json:"discount"`
	Total             decimal.Decimal   `json:"total"`
	PaymentMethod     string            `json:"paymentMethod"`
	DeliveryAddress   string            `json:"deliveryAddress,omitempty"`
	EstimatedDelivery string            `json:"estimatedDelivery,omitempty"`
}

// Item is one line of a past order.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size,omitempty"`
	Toppings    []string        `json:"toppings,omitempty"`
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    enums.OrderStatus `json:"status"`
	Note      string            `json:"note,omitempty"`
	ChangedAt time.Time         `json:"changedAt"`
}

// Created is the backend's acknowledgement of a submission.
type Created struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"orderNumber"`
}
