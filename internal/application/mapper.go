package application

import (
	"strings"

	"commerce-sync-layer/internal/domain"
	"commerce-sync-layer/internal/infrastructure/shopify"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

// The mappers are pure: the same wire payload always produces the same
// canonical output, which is what makes resync-by-replacement safe. Missing
// or null optional fields map to empty values, never to an error.

// MapCatalogItem converts a wire product to its canonical form.
func MapCatalogItem(p shopify.Product) domain.CatalogItem {
	variants := make([]domain.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, domain.Variant{
			ID:       v.ID,
			Title:    v.Title,
			SKU:      v.SKU,
			Price:    decimalValue(v.Price),
			Quantity: v.InventoryQuantity,
		})
	}

	return domain.CatalogItem{
		ID:        p.ID,
		Title:     p.Title,
		Vendor:    p.Vendor,
		Status:    p.Status,
		Tags:      splitTags(p.Tags),
		CreatedAt: p.CreatedAt,
		Variants:  variants,
	}
}

// MapOrder converts a wire order to its canonical form.
func MapOrder(o shopify.Order) domain.Order {
	lines := make([]domain.LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		lines = append(lines, domain.LineItem{
			ID:        li.ID,
			VariantID: li.VariantID,
			Title:     li.Title,
			SKU:       li.SKU,
			Quantity:  li.Quantity,
			Price:     decimalValue(li.Price),
		})
	}

	return domain.Order{
		ID:                o.ID,
		Name:              o.Name,
		Email:             o.Email,
		TotalPrice:        decimalValue(o.TotalPrice),
		Currency:          o.Currency,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		LineItems:         lines,
		ShippingAddress:   mapAddress(o.ShippingAddress),
		CreatedAt:         o.CreatedAt,
	}
}

// MapCustomer converts a wire customer to its canonical form.
func MapCustomer(c shopify.Customer) domain.Customer {
	addresses := make([]domain.Address, 0, len(c.Addresses))
	for i := range c.Addresses {
		addresses = append(addresses, *mapAddress(&c.Addresses[i]))
	}

	return domain.Customer{
		ID:          c.ID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		OrdersCount: c.OrdersCount,
		TotalSpent:  decimalValue(c.TotalSpent),
		Addresses:   addresses,
	}
}

// DeriveInventory emits one record per variant carrying a tracked quantity,
// keyed by variant ID. Items with no variants, or whose variants all have a
// null quantity, contribute nothing.
func DeriveInventory(items []domain.CatalogItem) []domain.InventoryRecord {
	var records []domain.InventoryRecord
	for _, item := range items {
		for _, v := range item.Variants {
			if v.Quantity == nil {
				continue
			}
			records = append(records, domain.InventoryRecord{
				VariantID:     v.ID,
				CatalogItemID: item.ID,
				SKU:           v.SKU,
				Quantity:      *v.Quantity,
				UnitPrice:     v.Price,
			})
		}
	}
	return records
}

// ApplyProfile copies the shop profile fields onto a store record.
func ApplyProfile(store *domain.ConnectedStore, profile *goshopify.Shop) {
	if profile == nil {
		return
	}
	if profile.Name != "" {
		store.Name = profile.Name
	}
	store.Currency = profile.Currency
	store.Timezone = profile.IanaTimezone
	store.Country = profile.Country
	store.Address = joinNonEmpty(", ", profile.Address1, profile.City, profile.Zip)
}

func mapAddress(a *shopify.Address) *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Province:  a.Province,
		Country:   a.Country,
		Zip:       a.Zip,
		Phone:     a.Phone,
	}
}

func decimalValue(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Decimal{}
	}
	return *d
}

func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
