package models

import "time"

// DocumentKind distinguishes quotes from invoices. Invoices additionally
// allow an installation-fee addon line.
type DocumentKind string

const (
	DocumentQuote   DocumentKind = "quote"
	DocumentInvoice DocumentKind = "invoice"
)

// AddonType identifies an optional priced accessory on a quote or invoice.
// Each addon type occupies at most one line item.
type AddonType string

const (
	AddonBracket      AddonType = "bracket"
	AddonArm          AddonType = "arm"
	AddonMotor        AddonType = "motor"
	AddonHeater       AddonType = "heater"
	AddonElectrician  AddonType = "electrician"
	AddonInstallation AddonType = "installation"
)

// LineItem is one row on a quote or invoice. The main product row has
// AddonType empty; addon rows carry a stable synthetic ItemID per type.
type LineItem struct {
	ItemID             string    `bson:"itemId" json:"itemId"`
	AddonType          AddonType `bson:"addonType,omitempty" json:"addonType,omitempty"`
	Description        string    `bson:"description" json:"description"`
	Quantity           int       `bson:"quantity" json:"quantity"`
	UnitPrice          float64   `bson:"unitPrice" json:"unitPrice"`
	DiscountPercentage float64   `bson:"discountPercentage" json:"discountPercentage"`
	TaxRate            float64   `bson:"taxRate" json:"taxRate"`
}

// Totals holds the derived money fields of a quote or invoice
type Totals struct {
	Subtotal      float64 `bson:"subtotal" json:"subtotal"`
	TotalDiscount float64 `bson:"totalDiscount" json:"totalDiscount"`
	TotalTax      float64 `bson:"totalTax" json:"totalTax"`
	GrandTotal    float64 `bson:"grandTotal" json:"grandTotal"`
}

// Document is a persisted quote or invoice
type Document struct {
	ID           int64        `bson:"_id" json:"id"`
	Kind         DocumentKind `bson:"kind" json:"kind"`
	Number       string       `bson:"number" json:"number"`
	CustomerID   int64        `bson:"customerId" json:"customerId"`
	CustomerName string       `bson:"customerName" json:"customerName"`
	WorkflowID   int64        `bson:"workflowId" json:"workflowId"`
	TaskID       int64        `bson:"taskId,omitempty" json:"taskId,omitempty"`
	QuoteID      *int64       `bson:"quoteId,omitempty" json:"quoteId,omitempty"` // invoice back-reference
	Items        []LineItem   `bson:"items" json:"items"`
	Totals       Totals       `bson:"totals" json:"totals"`
	Terms        string       `bson:"terms,omitempty" json:"terms,omitempty"`
	ArchiveKey   string       `bson:"archiveKey,omitempty" json:"archiveKey,omitempty"`
	ArchiveURL   string       `bson:"-" json:"archiveUrl,omitempty"` // derived from ArchiveKey at read time
	AmountPaid   float64      `bson:"amountPaid" json:"amountPaid"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Payment is a recorded payment against an invoice
type Payment struct {
	ID         int64     `bson:"_id" json:"id"`
	InvoiceID  int64     `bson:"invoiceId" json:"invoiceId"`
	Amount     float64   `bson:"amount" json:"amount"`
	Method     string    `bson:"method,omitempty" json:"method,omitempty"`
	Reference  string    `bson:"reference,omitempty" json:"reference,omitempty"`
	ReceivedAt time.Time `bson:"receivedAt" json:"receivedAt"`
}
