package domain

import "time"

// Product is a catalog item. Price is in minor units and is the authoritative
// unit price used at checkout; client-submitted prices are never trusted.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Gradient    string    `json:"gradient"`
	CreatedAt   time.Time `json:"created_at"`
}
