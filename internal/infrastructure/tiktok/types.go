package tiktok

import "encoding/json"

// Envelope is the common open API response wrapper. Code 0 means success;
// anything else carries a marketplace error message and a request id for
// diagnostics.
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

type tokenData struct {
	AccessToken         string `json:"access_token"`
	RefreshToken        string `json:"refresh_token"`
	AccessTokenExpireIn int64  `json:"access_token_expire_in"`
	OpenID              string `json:"open_id"`
	SellerName          string `json:"seller_name"`
}

type productSearchRequest struct {
	PageSize int    `json:"page_size"`
	Status   string `json:"status,omitempty"`
}

type orderSearchRequest struct {
	PageSize  int    `json:"page_size"`
	SortField string `json:"sort_field"`
	SortOrder string `json:"sort_order"`
}

type productSearchData struct {
	Products   []ProductPayload `json:"products"`
	TotalCount int              `json:"total_count"`
}

type orderSearchData struct {
	Orders     []OrderPayload `json:"orders"`
	TotalCount int            `json:"total_count"`
}

// ProductPayload is the marketplace's product shape as returned by the
// product search endpoint.
type ProductPayload struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	SalesCount int            `json:"sales_count"`
	Skus       []SKUPayload   `json:"skus"`
	MainImages []ImagePayload `json:"main_images"`
}

type SKUPayload struct {
	ID                string    `json:"id"`
	SellerSKU         string    `json:"seller_sku"`
	Price             PriceInfo `json:"price"`
	InventoryQuantity int       `json:"inventory_quantity"`
}

type PriceInfo struct {
	TaxExclusivePrice string `json:"tax_exclusive_price"`
	SalePrice         string `json:"sale_price"`
	Currency          string `json:"currency"`
}

type ImagePayload struct {
	ThumbURL string   `json:"thumb_url"`
	URLs     []string `json:"urls"`
}

// OrderPayload is the marketplace's order shape as returned by the order
// search endpoint. Timestamps are unix seconds.
type OrderPayload struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	BuyerEmail       string            `json:"buyer_email"`
	RecipientAddress *RecipientAddress `json:"recipient_address"`
	Payment          PaymentInfo       `json:"payment"`
	CreateTime       int64             `json:"create_time"`
	UpdateTime       int64             `json:"update_time"`
	LineItems        []LineItemPayload `json:"line_items"`
}

type RecipientAddress struct {
	Name string `json:"name"`
}

type PaymentInfo struct {
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
}

type LineItemPayload struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SalePrice   string `json:"sale_price"`
	SKUImage    string `json:"sku_image"`
}
