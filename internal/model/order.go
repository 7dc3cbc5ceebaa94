package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPaymentStatus is the payment state mirrored on the order header.
type OrderPaymentStatus string

const (
	OrderPaymentNotStarted OrderPaymentStatus = "not_started"
	OrderPaymentPending    OrderPaymentStatus = "pending"
	OrderPaymentCompleted  OrderPaymentStatus = "completed"
	OrderPaymentFailed     OrderPaymentStatus = "failed"
)

// Order represents a placed purchase. Its items are immutable once persisted
// and its total is always derived from them.
type Order struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	CustomerID    uuid.UUID          `json:"customerId" db:"customer_id"`
	PlacedAt      time.Time          `json:"placedAt" db:"placed_at"`
	PaymentStatus OrderPaymentStatus `json:"paymentStatus" db:"payment_status"`
	Items         []OrderItem        `json:"items" db:"-"`
}

// Total returns sum(unit_price * quantity) over the current items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderItem is one order line with the unit price captured at order time.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutRequest is the checkout entrypoint payload. Guest contact fields are
// only validated when the caller is not authenticated.
type CheckoutRequest struct {
	CartID        string        `json:"cart_id,omitempty" validate:"omitempty,uuid"`
	ProductID     string        `json:"product_id,omitempty"`
	Quantity      int           `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=10000"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=gateway cod"`

	GuestContact `validate:"-"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	ID            uuid.UUID          `json:"id"`
	CustomerID    uuid.UUID          `json:"customerId"`
	PlacedAt      time.Time          `json:"placedAt"`
	PaymentStatus OrderPaymentStatus `json:"paymentStatus"`
	Items         []OrderItem        `json:"items"`
	Total         Money              `json:"total"`
	Payment       *PaymentSummary    `json:"payment,omitempty"`
}

// NewOrderResponse builds the response view of an order and its payment.
func NewOrderResponse(order *Order, payment *Payment) *OrderResponse {
	items := order.Items
	if items == nil {
		items = []OrderItem{}
	}
	resp := &OrderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		PlacedAt:      order.PlacedAt,
		PaymentStatus: order.PaymentStatus,
		Items:         items,
		Total:         NewMoney(order.Total()),
	}
	if payment != nil {
		resp.Payment = &PaymentSummary{
			ID:     payment.ID,
			Status: payment.Status,
			Method: payment.Method,
			Amount: NewMoney(payment.Amount),
		}
	}
	return resp
}
