package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity caps the quantity of a single cart or order line.
const MaxItemQuantity = 10000

// CartItem is a product and accumulated quantity staged in a cart.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`

	// Product carries the live product price; it is not stored on the item.
	Product *Product `json:"product,omitempty" db:"-"`
}

// LineTotal returns quantity times the product's live unit price.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a pre-order staging aggregate keyed by a client-held token.
type Cart struct {
	ID    uuid.UUID  `json:"id"`
	Items []CartItem `json:"items"`
}

// Total sums live line totals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// AddCartItemRequest represents the payload for adding a product to a cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=10000"`
}

// UpdateCartItemRequest sets the quantity of an existing cart line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=10000"`
}

// CartResponse represents a cart with live prices.
type CartResponse struct {
	ID         uuid.UUID  `json:"id"`
	Items      []CartItem `json:"items"`
	TotalPrice Money      `json:"totalPrice"`
}
