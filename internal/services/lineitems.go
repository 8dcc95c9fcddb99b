package services

import (
	"fmt"
	"strconv"

	"awning-admin-api/internal/models"
)

// MainProductItemID is the stable identifier of the main product line item
const MainProductItemID = "main-product"

// quoteAddonOrder is the fixed insertion order of addon line items. Invoices
// additionally allow an installation fee at the end.
var quoteAddonOrder = []models.AddonType{
	models.AddonBracket,
	models.AddonArm,
	models.AddonMotor,
	models.AddonHeater,
	models.AddonElectrician,
}

var invoiceAddonOrder = append(append([]models.AddonType{}, quoteAddonOrder...), models.AddonInstallation)

// LineItemBuilder accumulates the ordered line items of one quote or
// invoice: a main product row plus at most one row per addon type, kept in
// the fixed addon order regardless of selection order.
type LineItemBuilder struct {
	kind  models.DocumentKind
	items []models.LineItem
}

// NewLineItemBuilder creates a builder for the given document kind
func NewLineItemBuilder(kind models.DocumentKind) *LineItemBuilder {
	return &LineItemBuilder{kind: kind}
}

// Items returns the accumulated line items in display order
func (b *LineItemBuilder) Items() []models.LineItem {
	return b.items
}

// addonOrder returns the canonical addon ordering for the builder's kind
func (b *LineItemBuilder) addonOrder() []models.AddonType {
	if b.kind == models.DocumentInvoice {
		return invoiceAddonOrder
	}
	return quoteAddonOrder
}

// addonRank returns the position of an addon type in the canonical order,
// or -1 for unknown types
func (b *LineItemBuilder) addonRank(t models.AddonType) int {
	for i, a := range b.addonOrder() {
		if a == t {
			return i
		}
	}
	return -1
}

// SetMainProduct regenerates the main product line item. It is written only
// when both width and projection are known; the description is templated
// from the product name and the dimensions in metres.
func (b *LineItemBuilder) SetMainProduct(productName string, widthCm, projectionCm int, unitPrice, discountPct, taxRate float64) {
	if widthCm <= 0 || projectionCm <= 0 {
		return
	}

	item := models.LineItem{
		ItemID: MainProductItemID,
		Description: fmt.Sprintf("%s closed cassette awning\n%sm wide x %sm projection",
			productName, formatMetres(widthCm), formatMetres(projectionCm)),
		Quantity:           1,
		UnitPrice:          unitPrice,
		DiscountPercentage: discountPct,
		TaxRate:            taxRate,
	}

	for i := range b.items {
		if b.items[i].ItemID == MainProductItemID {
			b.items[i] = item
			return
		}
	}

	b.items = append([]models.LineItem{item}, b.items...)
}

// SetAddon upserts or removes the line item for one addon type. Deselecting
// removes exactly that item; selecting inserts it immediately after the main
// product and every earlier-ordered addon currently present, so the addon
// block is always in canonical order no matter what order the user picked.
func (b *LineItemBuilder) SetAddon(addonType models.AddonType, selected bool, description string, quantity int, unitPrice, discountPct, taxRate float64) error {
	rank := b.addonRank(addonType)
	if rank < 0 {
		return fmt.Errorf("addon type %q is not valid for a %s", addonType, b.kind)
	}

	if !selected {
		b.removeAddon(addonType)
		return nil
	}

	if quantity <= 0 {
		quantity = 1
	}
	item := models.LineItem{
		ItemID:             "addon-" + string(addonType),
		AddonType:          addonType,
		Description:        description,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: discountPct,
		TaxRate:            taxRate,
	}

	// Reselecting replaces in place
	for i := range b.items {
		if b.items[i].AddonType == addonType {
			b.items[i] = item
			return nil
		}
	}

	insertAt := 0
	for i := range b.items {
		if b.items[i].ItemID == MainProductItemID {
			insertAt = i + 1
			continue
		}
		if r := b.addonRank(b.items[i].AddonType); r >= 0 && r < rank {
			insertAt = i + 1
		}
	}

	b.items = append(b.items, models.LineItem{})
	copy(b.items[insertAt+1:], b.items[insertAt:])
	b.items[insertAt] = item
	return nil
}

func (b *LineItemBuilder) removeAddon(addonType models.AddonType) {
	for i := range b.items {
		if b.items[i].AddonType == addonType {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// formatMetres renders a centimetre dimension in metres without trailing
// zeros (350 -> "3.5", 400 -> "4")
func formatMetres(cm int) string {
	return strconv.FormatFloat(float64(cm)/100, 'f', -1, 64)
}

// ComputeTotals derives the money fields from a list of line items:
//
//	subtotal      = sum(quantity * unitPrice)
//	totalDiscount = sum(quantity * unitPrice * discount%)
//	totalTax      = sum(post-discount amount * tax%)
//	grandTotal    = subtotal - totalDiscount + totalTax
func ComputeTotals(items []models.LineItem) models.Totals {
	var totals models.Totals
	for _, item := range items {
		gross := float64(item.Quantity) * item.UnitPrice
		discount := gross * item.DiscountPercentage / 100
		net := gross - discount
		totals.Subtotal += gross
		totals.TotalDiscount += discount
		totals.TotalTax += net * item.TaxRate / 100
	}
	totals.GrandTotal = totals.Subtotal - totals.TotalDiscount + totals.TotalTax
	return totals
}

// ItemAmount returns one line's pre-tax amount after discount
func ItemAmount(item models.LineItem) float64 {
	return float64(item.Quantity) * item.UnitPrice * (1 - item.DiscountPercentage/100)
}

// ValidateItems checks the form-validity rules for a quote or invoice:
// a resolved workflow and customer, at least one line item, and every item
// with a description, positive quantity, and non-negative unit price.
func ValidateItems(workflowID, customerID int64, items []models.LineItem) error {
	if workflowID == 0 {
		return fmt.Errorf("a workflow must be resolved before saving")
	}
	if customerID == 0 {
		return fmt.Errorf("a customer must be resolved before saving")
	}
	if len(items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, item := range items {
		if item.Description == "" {
			return fmt.Errorf("line item %d has no description", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("line item %d has a non-positive quantity", i+1)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("line item %d has a negative unit price", i+1)
		}
	}
	return nil
}
