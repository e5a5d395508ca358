package domain

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const sellerIDKey contextKey = "seller_id"

// WithSellerID returns a context carrying the authenticated seller.
func WithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerIDKey, sellerID)
}

// SellerIDFromContext returns the authenticated seller, or "" when absent.
func SellerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sellerIDKey).(string); ok {
		return v
	}
	return ""
}
