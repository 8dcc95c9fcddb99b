package services

import (
	"bytes"
	"fmt"
	"strings"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/utils"

	"github.com/jung-kurt/gofpdf/v2"
)

// PDFService renders quotes and invoices as PDF documents
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// DocumentFilename returns the deterministic download filename for a
// document: the document number plus the sanitized customer name.
func DocumentFilename(doc *models.Document) string {
	return fmt.Sprintf("%s-%s.pdf", doc.Number, utils.SanitizeFilename(doc.CustomerName))
}

// GenerateDocumentPDF renders a quote or invoice
func (s *PDFService) GenerateDocumentPDF(doc *models.Document) ([]byte, error) {
	if doc == nil || len(doc.Items) == 0 {
		return nil, fmt.Errorf("invalid document data")
	}

	// Create PDF document (A4, portrait)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(108, 117, 125) // Gray
		pdf.SetX(15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	title := "Quotation"
	if doc.Kind == models.DocumentInvoice {
		title = "Invoice"
	}

	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 102, 204) // Blue
	pdf.CellFormat(0, 14, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(33, 37, 41) // Dark gray
	pdf.CellFormat(0, 7, fmt.Sprintf("Number: %s", doc.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Customer: %s", doc.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s", doc.CreatedAt.Format("2 January 2006")), "", 1, "L", false, 0, "")
	if doc.Kind == models.DocumentInvoice && doc.QuoteID != nil {
		pdf.CellFormat(0, 7, fmt.Sprintf("Against quote: Q-%05d", *doc.QuoteID), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(0, 102, 204)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	s.addItemTable(pdf, doc.Items)
	s.addTotals(pdf, doc.Totals)

	if doc.Terms != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(180, 5, doc.Terms, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// Column widths for the line item table, totalling the 180mm content width
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", 80, "L"},
	{"Qty", 15, "C"},
	{"Unit", 25, "R"},
	{"Disc %", 15, "R"},
	{"Tax %", 15, "R"},
	{"Amount", 30, "R"},
}

func (s *PDFService) addItemTable(pdf *gofpdf.Fpdf, items []models.LineItem) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(248, 249, 250) // Light gray
	pdf.SetTextColor(33, 37, 41)
	for _, col := range itemColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, item := range items {
		// Description rows can wrap to multiple lines
		lines := pdf.SplitText(strings.ReplaceAll(item.Description, "\n", " "), itemColumns[0].width-2)
		rowHeight := float64(len(lines)) * 5
		if rowHeight < 8 {
			rowHeight = 8
		}

		x, y := pdf.GetXY()
		pdf.Rect(x, y, itemColumns[0].width, rowHeight, "D")
		pdf.MultiCell(itemColumns[0].width, 5, strings.Join(lines, "\n"), "", "L", false)
		pdf.SetXY(x+itemColumns[0].width, y)

		values := []string{
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%.2f", item.UnitPrice),
			fmt.Sprintf("%.1f", item.DiscountPercentage),
			fmt.Sprintf("%.1f", item.TaxRate),
			fmt.Sprintf("%.2f", ItemAmount(item)),
		}
		for i, v := range values {
			col := itemColumns[i+1]
			pdf.CellFormat(col.width, rowHeight, v, "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (s *PDFService) addTotals(pdf *gofpdf.Fpdf, totals models.Totals) {
	pdf.Ln(4)
	rows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal", totals.Subtotal, false},
		{"Discount", totals.TotalDiscount, false},
		{"Tax", totals.TotalTax, false},
		{"Total", totals.GrandTotal, true},
	}

	for _, row := range rows {
		if row.bold {
			pdf.SetFont("Arial", "B", 10)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(150, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", row.value), "", 1, "R", false, 0, "")
	}
}
