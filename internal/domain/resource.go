package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResourceKind identifies one of the canonical resource types kept in sync
// with the external platform. Inventory is derived locally from catalog item
// variants rather than fetched.
type ResourceKind string

const (
	KindCatalogItem ResourceKind = "catalogItem"
	KindOrder       ResourceKind = "order"
	KindCustomer    ResourceKind = "customer"
	KindInventory   ResourceKind = "inventory"
)

// SyncedKinds lists every kind a full sync touches, in write order.
var SyncedKinds = []ResourceKind{KindCatalogItem, KindOrder, KindCustomer, KindInventory}

// CanonicalResource is the tenant-partitioned envelope around a kind-specific
// payload. The tuple (TenantID, StoreID, Kind, ExternalID) is unique.
type CanonicalResource struct {
	TenantID   string
	StoreID    string
	Kind       ResourceKind
	ExternalID string
	Payload    any
}

// CatalogItem is the canonical representation of a platform product.
type CatalogItem struct {
	ID        int64      `json:"id" bson:"id"`
	Title     string     `json:"title" bson:"title"`
	Vendor    string     `json:"vendor" bson:"vendor"`
	Status    string     `json:"status" bson:"status"`
	Tags      []string   `json:"tags" bson:"tags"`
	CreatedAt *time.Time `json:"created_at,omitempty" bson:"createdAt,omitempty"`
	Variants  []Variant  `json:"variants" bson:"variants"`
}

// Variant is a purchasable variation of a catalog item. Quantity is nil when
// the platform does not track inventory for the variant.
type Variant struct {
	ID       int64           `json:"id" bson:"id"`
	Title    string          `json:"title" bson:"title"`
	SKU      string          `json:"sku" bson:"sku"`
	Price    decimal.Decimal `json:"price" bson:"price"`
	Quantity *int            `json:"quantity,omitempty" bson:"quantity,omitempty"`
}

// Order is the canonical representation of a platform order.
type Order struct {
	ID                int64           `json:"id" bson:"id"`
	Name              string          `json:"name" bson:"name"`
	Email             string          `json:"email" bson:"email"`
	TotalPrice        decimal.Decimal `json:"total_price" bson:"totalPrice"`
	Currency          string          `json:"currency" bson:"currency"`
	FinancialStatus   string          `json:"financial_status" bson:"financialStatus"`
	FulfillmentStatus string          `json:"fulfillment_status" bson:"fulfillmentStatus"`
	LineItems         []LineItem      `json:"line_items" bson:"lineItems"`
	ShippingAddress   *Address        `json:"shipping_address,omitempty" bson:"shippingAddress,omitempty"`
	CreatedAt         *time.Time      `json:"created_at,omitempty" bson:"createdAt,omitempty"`
}

// LineItem is one purchased line of an order.
type LineItem struct {
	ID        int64           `json:"id" bson:"id"`
	VariantID int64           `json:"variant_id" bson:"variantId"`
	Title     string          `json:"title" bson:"title"`
	SKU       string          `json:"sku" bson:"sku"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	Price     decimal.Decimal `json:"price" bson:"price"`
}

// Customer is the canonical representation of a platform customer.
type Customer struct {
	ID          int64           `json:"id" bson:"id"`
	Email       string          `json:"email" bson:"email"`
	FirstName   string          `json:"first_name" bson:"firstName"`
	LastName    string          `json:"last_name" bson:"lastName"`
	Phone       string          `json:"phone" bson:"phone"`
	OrdersCount int             `json:"orders_count" bson:"ordersCount"`
	TotalSpent  decimal.Decimal `json:"total_spent" bson:"totalSpent"`
	Addresses   []Address       `json:"addresses" bson:"addresses"`
}

// Address is a postal address attached to an order or customer.
type Address struct {
	FirstName string `json:"first_name,omitempty" bson:"firstName,omitempty"`
	LastName  string `json:"last_name,omitempty" bson:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty" bson:"address1,omitempty"`
	Address2  string `json:"address2,omitempty" bson:"address2,omitempty"`
	City      string `json:"city,omitempty" bson:"city,omitempty"`
	Province  string `json:"province,omitempty" bson:"province,omitempty"`
	Country   string `json:"country,omitempty" bson:"country,omitempty"`
	Zip       string `json:"zip,omitempty" bson:"zip,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// InventoryRecord is derived one-per-variant from catalog items whose
// variants carry a tracked quantity. It is keyed by variant ID.
type InventoryRecord struct {
	VariantID     int64           `json:"variant_id" bson:"variantId"`
	CatalogItemID int64           `json:"catalog_item_id" bson:"catalogItemId"`
	SKU           string          `json:"sku" bson:"sku"`
	Quantity      int             `json:"quantity" bson:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" bson:"unitPrice"`
}
