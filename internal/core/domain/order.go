package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// LineItem is a single cart position. UnitPrice is the catalog price in
// minor units at checkout time.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order represents a purchase. TransactionID links the order to the
// purchase_debit ledger entry it was created with; TotalPrice always equals
// the magnitude of that entry.
type Order struct {
	ID            int64       `json:"id"`
	AccountID     int64       `json:"account_id"`
	Items         []LineItem  `json:"items"`
	TotalPrice    int64       `json:"total_price"`
	TransactionID int64       `json:"transaction_id"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

var (
	// ErrEmptyCart is returned by ComputeTotal for an empty item list.
	ErrEmptyCart = errors.New("cart has no items")
	// ErrInvalidLineItem is returned for non-positive quantity or price.
	ErrInvalidLineItem = errors.New("line item has non-positive quantity or price")
)

// ComputeTotal sums unit_price * quantity over the line items.
// It is pure: no I/O, no clock, fully unit-testable.
func ComputeTotal(items []LineItem) (int64, error) {
	if len(items) == 0 {
		return 0, ErrEmptyCart
	}
	var total int64
	for _, it := range items {
		if it.Quantity <= 0 || it.UnitPrice <= 0 {
			return 0, ErrInvalidLineItem
		}
		total += it.UnitPrice * it.Quantity
	}
	return total, nil
}
