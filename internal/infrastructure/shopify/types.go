package shopify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire shapes for the platform's versioned REST reads. Pointer fields keep
// the distinction between an absent value and a zero value, which the
// inventory derivation depends on. The go-shopify structs flatten
// inventory_quantity to a plain int, so products, orders and customers are
// decoded into these local types instead.

// Product is the wire shape of a catalog item.
type Product struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Vendor    string     `json:"vendor"`
	Status    string     `json:"status"`
	Tags      string     `json:"tags"`
	CreatedAt *time.Time `json:"created_at"`
	Variants  []Variant  `json:"variants"`
}

// Variant is the wire shape of a product variant. InventoryQuantity is nil
// when the platform does not track inventory for the variant.
type Variant struct {
	ID                int64            `json:"id"`
	ProductID         int64            `json:"product_id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku"`
	Price             *decimal.Decimal `json:"price"`
	InventoryQuantity *int             `json:"inventory_quantity"`
}

// Order is the wire shape of an order.
type Order struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	TotalPrice        *decimal.Decimal `json:"total_price"`
	Currency          string           `json:"currency"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	LineItems         []LineItem       `json:"line_items"`
	ShippingAddress   *Address         `json:"shipping_address"`
	CreatedAt         *time.Time       `json:"created_at"`
}

// LineItem is the wire shape of an order line.
type LineItem struct {
	ID        int64            `json:"id"`
	VariantID int64            `json:"variant_id"`
	Title     string           `json:"title"`
	SKU       string           `json:"sku"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// Customer is the wire shape of a customer.
type Customer struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Phone       string           `json:"phone"`
	OrdersCount int              `json:"orders_count"`
	TotalSpent  *decimal.Decimal `json:"total_spent"`
	Addresses   []Address        `json:"addresses"`
}

// Address is the wire shape of a postal address.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}

// AccessGrant is the token endpoint's response to a successful
// code-for-token exchange.
type AccessGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}
