package tiktok

import (
	"time"

	"storelink-marketplace-layer/internal/domain"

	"github.com/shopspring/decimal"
)

// orderStatusTable translates the marketplace order status vocabulary into
// the platform's canonical one. Anything unlisted maps to Processing.
var orderStatusTable = map[string]domain.OrderStatus{
	"UNPAID":              domain.OrderUnpaid,
	"AWAITING_SHIPMENT":   domain.OrderProcessing,
	"AWAITING_COLLECTION": domain.OrderProcessing,
	"IN_TRANSIT":          domain.OrderShipped,
	"DELIVERED":           domain.OrderCompleted,
	"COMPLETED":           domain.OrderCompleted,
	"CANCELLED":           domain.OrderCancelled,
}

// MapOrderStatus translates one marketplace order status.
func MapOrderStatus(status string) domain.OrderStatus {
	if s, ok := orderStatusTable[status]; ok {
		return s
	}
	return domain.OrderProcessing
}

// NormalizeProducts maps marketplace products into canonical records.
// Total over well-formed payloads: missing optional fields degrade to
// defaults, never to an error.
func NormalizeProducts(storeID string, products []ProductPayload) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		prod := domain.Product{
			ID:      p.ID,
			StoreID: storeID,
			Name:    p.Title,
			SKU:     "NO-SKU",
			Price:   decimal.Zero,
			Sold:    p.SalesCount,
			Status:  domain.ProductInactive,
		}
		if p.Status == "ACTIVATE" {
			prod.Status = domain.ProductActive
		}
		if len(p.Skus) > 0 {
			sku := p.Skus[0]
			if sku.SellerSKU != "" {
				prod.SKU = sku.SellerSKU
			}
			prod.Price = parsePrice(sku.Price.TaxExclusivePrice)
			prod.Stock = sku.InventoryQuantity
		}
		if len(p.MainImages) > 0 {
			prod.ImageURL = p.MainImages[0].ThumbURL
		}
		out = append(out, prod)
	}
	return out
}

// NormalizeOrders maps marketplace orders into canonical records. CreatedAt
// keeps only the date of the create timestamp; UpdatedAt keeps the full
// timestamp.
func NormalizeOrders(sellerID, storeID string, orders []OrderPayload) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		ord := domain.Order{
			ID:        o.ID,
			SellerID:  sellerID,
			StoreID:   storeID,
			Customer:  customerLabel(o),
			Status:    MapOrderStatus(o.Status),
			Total:     parsePrice(o.Payment.TotalAmount),
			CreatedAt: time.Unix(o.CreateTime, 0).UTC().Truncate(24 * time.Hour),
			UpdatedAt: time.Unix(o.UpdateTime, 0).UTC(),
		}
		items := make([]domain.OrderItem, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			items = append(items, domain.OrderItem{
				ProductID: li.ProductID,
				Name:      li.ProductName,
				// Observed order payloads carry one line item per unit and
				// expose no quantity field. Verify against current API docs
				// before changing.
				Quantity: 1,
				Price:    parsePrice(li.SalePrice),
				ImageURL: li.SKUImage,
			})
		}
		ord.Items = items
		out = append(out, ord)
	}
	return out
}

func customerLabel(o OrderPayload) string {
	if o.RecipientAddress != nil && o.RecipientAddress.Name != "" {
		return o.RecipientAddress.Name
	}
	return o.BuyerEmail
}

func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
