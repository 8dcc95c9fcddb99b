package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DocumentDatabase is the persistence surface the document service needs
type DocumentDatabase interface {
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetWorkflowByID(ctx context.Context, id int64) (*models.Workflow, error)
	GetPrice(ctx context.Context, productID int64, widthCm, projectionCm int) (*models.PriceEntry, error)
	CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error)
	GetDocument(ctx context.Context, kind models.DocumentKind, id int64) (*models.Document, error)
	SetDocumentArchiveKey(ctx context.Context, kind models.DocumentKind, id int64, key string) error
	SetTaskQuote(ctx context.Context, id, quoteID int64) error
	UpdateWorkflowStages(ctx context.Context, id int64, fields bson.M) error
	RecordPayment(ctx context.Context, payment models.Payment) (*models.Payment, error)
}

// DocumentService builds, persists, renders, and distributes quotes and
// invoices. Rendering failures fail the request; archive and email are
// best-effort side channels.
type DocumentService struct {
	db      DocumentDatabase
	pdf     *PDFService
	email   *EmailService // nil when SendGrid is not configured
	archive DocumentStore // nil when no S3 archive is configured
}

// NewDocumentService creates a new document service
func NewDocumentService(db DocumentDatabase, pdf *PDFService, email *EmailService, archive DocumentStore) *DocumentService {
	return &DocumentService{
		db:      db,
		pdf:     pdf,
		email:   email,
		archive: archive,
	}
}

// BuildDocument assembles a quote or invoice from the builder selections,
// validates it, persists it, and kicks off the best-effort distribution
// steps
func (s *DocumentService) BuildDocument(ctx context.Context, kind models.DocumentKind, req models.BuildDocumentRequest) (*models.Document, error) {
	customer, err := s.db.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("customer not found: %d", req.CustomerID)
	}

	workflow, err := s.db.GetWorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, fmt.Errorf("workflow not found: %d", req.WorkflowID)
	}

	price, err := s.db.GetPrice(ctx, req.ProductID, req.WidthCm, req.ProjectionCm)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, fmt.Errorf("no price for product %d at %dcm x %dcm", req.ProductID, req.WidthCm, req.ProjectionCm)
	}

	builder := NewLineItemBuilder(kind)
	builder.SetMainProduct(price.ProductName, req.WidthCm, req.ProjectionCm, price.UnitPrice, req.DiscountPercentage, req.TaxRate)
	for _, sel := range req.Addons {
		discount := req.DiscountPercentage
		if sel.DiscountPercentage != nil {
			discount = *sel.DiscountPercentage
		}
		if err := builder.SetAddon(models.AddonType(sel.Type), sel.Selected, sel.Description, sel.Quantity, sel.UnitPrice, discount, req.TaxRate); err != nil {
			return nil, err
		}
	}

	items := builder.Items()
	if err := ValidateItems(req.WorkflowID, req.CustomerID, items); err != nil {
		return nil, err
	}

	doc := models.Document{
		Kind:         kind,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		WorkflowID:   workflow.ID,
		TaskID:       req.TaskID,
		QuoteID:      req.QuoteID,
		Items:        items,
		Totals:       ComputeTotals(items),
		Terms:        req.Terms,
	}

	created, err := s.db.CreateDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	s.recordLinkage(ctx, kind, created, req)
	s.distribute(created, req.EmailTo)

	return created, nil
}

// recordLinkage advances the workflow stage flags and, for quotes created
// from a task, writes the quote id back onto the task. Both are best-effort.
func (s *DocumentService) recordLinkage(ctx context.Context, kind models.DocumentKind, doc *models.Document, req models.BuildDocumentRequest) {
	stage := "quote"
	if kind == models.DocumentInvoice {
		stage = "invoice"
	}
	if err := s.db.UpdateWorkflowStages(ctx, doc.WorkflowID, bson.M{stage: true}); err != nil {
		log.Printf("WARNING: failed to enable %s stage on workflow %d: %v", stage, doc.WorkflowID, err)
	}

	if kind == models.DocumentQuote && req.TaskID != 0 {
		if err := s.db.SetTaskQuote(ctx, req.TaskID, doc.ID); err != nil {
			log.Printf("WARNING: failed to record quote %d on task %d: %v", doc.ID, req.TaskID, err)
		}
	}
}

// distribute renders the PDF once and fans it out to the archive and the
// customer email. Failures are logged, never surfaced.
func (s *DocumentService) distribute(doc *models.Document, emailTo string) {
	go func() {
		pdfData, err := s.pdf.GenerateDocumentPDF(doc)
		if err != nil {
			log.Printf("ERROR: failed to render PDF for %s %s: %v", doc.Kind, doc.Number, err)
			return
		}

		if s.archive != nil {
			ctx := context.Background()
			key, err := s.archive.UploadDocument(ctx, DocumentFilename(doc), pdfData)
			if err != nil {
				log.Printf("WARNING: failed to archive %s %s: %v", doc.Kind, doc.Number, err)
			} else if err := s.db.SetDocumentArchiveKey(ctx, doc.Kind, doc.ID, key); err != nil {
				log.Printf("WARNING: failed to record archive key for %s %s: %v", doc.Kind, doc.Number, err)
			}
		}

		if s.email != nil && emailTo != "" {
			if err := s.email.SendDocumentEmail(emailTo, doc, pdfData); err != nil {
				log.Printf("WARNING: failed to email %s %s to %s: %v", doc.Kind, doc.Number, emailTo, err)
			}
		}
	}()
}

// RenderDocument loads a stored document and renders its PDF for download
func (s *DocumentService) RenderDocument(ctx context.Context, kind models.DocumentKind, id int64) (*models.Document, []byte, error) {
	doc, err := s.db.GetDocument(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%s not found: %d", kind, id)
	}

	pdfData, err := s.pdf.GenerateDocumentPDF(doc)
	if err != nil {
		return nil, nil, err
	}

	return doc, pdfData, nil
}

// ArchiveURL returns the public URL of a document's archived copy, or ""
// when the document has not been archived or no archive is configured
func (s *DocumentService) ArchiveURL(doc *models.Document) string {
	if s.archive == nil || doc.ArchiveKey == "" {
		return ""
	}
	return s.archive.GetFileURL(doc.ArchiveKey)
}

// FetchArchivedDocument streams the archived copy of a document from the
// archive store, as distributed at creation time
func (s *DocumentService) FetchArchivedDocument(ctx context.Context, kind models.DocumentKind, id int64) (io.ReadCloser, string, error) {
	if s.archive == nil {
		return nil, "", fmt.Errorf("no document archive is configured")
	}

	doc, err := s.db.GetDocument(ctx, kind, id)
	if err != nil {
		return nil, "", err
	}
	if doc == nil {
		return nil, "", fmt.Errorf("%s not found: %d", kind, id)
	}
	if doc.ArchiveKey == "" {
		return nil, "", fmt.Errorf("%s %s has no archived copy", kind, doc.Number)
	}

	return s.archive.GetObject(ctx, doc.ArchiveKey)
}

// RecordPayment records a payment against an invoice
func (s *DocumentService) RecordPayment(ctx context.Context, invoiceID int64, req models.RecordPaymentRequest) (*models.Payment, error) {
	invoice, err := s.db.GetDocument(ctx, models.DocumentInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice not found: %d", invoiceID)
	}

	payment := models.Payment{
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	}
	return s.db.RecordPayment(ctx, payment)
}
