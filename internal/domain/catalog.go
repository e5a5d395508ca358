package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the canonical product availability state.
type ProductStatus string

const (
	ProductActive   ProductStatus = "Active"
	ProductInactive ProductStatus = "Inactive"
)

// OrderStatus is the canonical order lifecycle state.
type OrderStatus string

const (
	OrderUnpaid     OrderStatus = "Unpaid"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

// Product is the platform's normalized view of one marketplace product.
// It is reconstructed on every sync pass and never persisted.
type Product struct {
	ID       string          `json:"id"`
	StoreID  string          `json:"store_id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url"`
	Sold     int             `json:"sold"`
	Status   ProductStatus   `json:"status"`
}

// OrderItem is one line of a normalized order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}

// Order is the platform's normalized view of one marketplace order.
// Ephemeral, same as Product.
type Order struct {
	ID        string          `json:"id"`
	SellerID  string          `json:"seller_id"`
	StoreID   string          `json:"store_id"`
	Customer  string          `json:"customer"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []OrderItem     `json:"items"`
}
