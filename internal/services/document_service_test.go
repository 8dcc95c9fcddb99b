package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"awning-admin-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeDocumentDB implements DocumentDatabase in memory
type fakeDocumentDB struct {
	mutex      sync.Mutex
	customers  map[int64]*models.Customer
	workflows  map[int64]*models.Workflow
	prices     map[int64]*models.PriceEntry // keyed by product id
	documents  map[int64]*models.Document
	nextID     int64
	stageFlags map[int64]bson.M
	taskQuotes map[int64]int64
	payments   []models.Payment
}

func newFakeDocumentDB() *fakeDocumentDB {
	return &fakeDocumentDB{
		customers:  make(map[int64]*models.Customer),
		workflows:  make(map[int64]*models.Workflow),
		prices:     make(map[int64]*models.PriceEntry),
		documents:  make(map[int64]*models.Document),
		stageFlags: make(map[int64]bson.M),
		taskQuotes: make(map[int64]int64),
	}
}

func (f *fakeDocumentDB) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeDocumentDB) GetWorkflowByID(ctx context.Context, id int64) (*models.Workflow, error) {
	return f.workflows[id], nil
}

func (f *fakeDocumentDB) GetPrice(ctx context.Context, productID int64, widthCm, projectionCm int) (*models.PriceEntry, error) {
	return f.prices[productID], nil
}

func (f *fakeDocumentDB) CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.nextID++
	doc.ID = f.nextID
	doc.Number = "Q-00001"
	if doc.Kind == models.DocumentInvoice {
		doc.Number = "INV-00001"
	}
	doc.CreatedAt = time.Now()
	f.documents[doc.ID] = &doc
	return &doc, nil
}

func (f *fakeDocumentDB) GetDocument(ctx context.Context, kind models.DocumentKind, id int64) (*models.Document, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	doc, ok := f.documents[id]
	if !ok || doc.Kind != kind {
		return nil, nil
	}
	return doc, nil
}

func (f *fakeDocumentDB) SetDocumentArchiveKey(ctx context.Context, kind models.DocumentKind, id int64, key string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if doc, ok := f.documents[id]; ok {
		doc.ArchiveKey = key
	}
	return nil
}

func (f *fakeDocumentDB) SetTaskQuote(ctx context.Context, id, quoteID int64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.taskQuotes[id] = quoteID
	return nil
}

func (f *fakeDocumentDB) UpdateWorkflowStages(ctx context.Context, id int64, fields bson.M) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stageFlags[id] = fields
	return nil
}

func (f *fakeDocumentDB) RecordPayment(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	payment.ID = int64(len(f.payments) + 1)
	f.payments = append(f.payments, payment)
	return &payment, nil
}

// fakeArchive implements DocumentStore in memory
type fakeArchive struct {
	mutex   sync.Mutex
	objects map[string][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (f *fakeArchive) UploadDocument(ctx context.Context, filename string, data []byte) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	key := "documents/2026/" + filename
	f.objects[key] = data
	return key, nil
}

func (f *fakeArchive) GetFileURL(key string) string {
	return "https://archive.example.com/" + key
}

func (f *fakeArchive) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), "application/pdf", nil
}

func seededDocumentDB() *fakeDocumentDB {
	db := newFakeDocumentDB()
	db.customers[10] = &models.Customer{ID: 10, Name: "Acme Blinds"}
	db.workflows[100] = &models.Workflow{ID: 100, CustomerID: 10, ProductName: "Sunshade 3000"}
	db.prices[1] = &models.PriceEntry{ProductID: 1, ProductName: "Sunshade 3000", WidthCm: 400, ProjectionCm: 350, UnitPrice: 1200}
	return db
}

func buildRequest() models.BuildDocumentRequest {
	return models.BuildDocumentRequest{
		CustomerID:   10,
		WorkflowID:   100,
		TaskID:       7,
		ProductID:    1,
		WidthCm:      400,
		ProjectionCm: 350,
		TaxRate:      20,
	}
}

func TestBuildDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("builds a quote from the price list", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		doc, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
		require.NoError(t, err)

		assert.Equal(t, "Q-00001", doc.Number)
		assert.Equal(t, "Acme Blinds", doc.CustomerName)
		require.Len(t, doc.Items, 1)
		assert.Equal(t, MainProductItemID, doc.Items[0].ItemID)
		assert.Equal(t, 1200.0, doc.Items[0].UnitPrice)
		assert.InDelta(t, 1440.0, doc.Totals.GrandTotal, 0.001)
	})

	t.Run("quote enables the quote stage and writes back to the task", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		doc, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
		require.NoError(t, err)

		db.mutex.Lock()
		defer db.mutex.Unlock()
		assert.Equal(t, bson.M{"quote": true}, db.stageFlags[100])
		assert.Equal(t, doc.ID, db.taskQuotes[7])
	})

	t.Run("invoice enables the invoice stage and keeps the quote reference", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		req := buildRequest()
		quoteID := int64(1)
		req.QuoteID = &quoteID

		doc, err := service.BuildDocument(ctx, models.DocumentInvoice, req)
		require.NoError(t, err)

		require.NotNil(t, doc.QuoteID)
		assert.Equal(t, int64(1), *doc.QuoteID)

		db.mutex.Lock()
		defer db.mutex.Unlock()
		assert.Equal(t, bson.M{"invoice": true}, db.stageFlags[100])
		// Quote write-back is quote-only
		assert.Empty(t, db.taskQuotes)
	})

	t.Run("addons are folded into the document", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		req := buildRequest()
		req.Addons = []models.AddonSelection{
			{Type: "motor", Selected: true, Description: "Somfy motor", Quantity: 1, UnitPrice: 250},
			{Type: "bracket", Selected: true, Description: "Heavy-duty brackets", Quantity: 2, UnitPrice: 40},
		}

		doc, err := service.BuildDocument(ctx, models.DocumentQuote, req)
		require.NoError(t, err)

		assert.Equal(t, []string{MainProductItemID, "addon-bracket", "addon-motor"}, itemIDs(doc.Items))
	})

	t.Run("per-addon discount overrides the document rate", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		motorDiscount := 50.0
		req := buildRequest()
		req.DiscountPercentage = 10
		req.Addons = []models.AddonSelection{
			{Type: "motor", Selected: true, Description: "Somfy motor", Quantity: 1, UnitPrice: 250, DiscountPercentage: &motorDiscount},
			{Type: "bracket", Selected: true, Description: "Heavy-duty brackets", Quantity: 2, UnitPrice: 40},
		}

		doc, err := service.BuildDocument(ctx, models.DocumentQuote, req)
		require.NoError(t, err)

		rates := make(map[string]float64)
		for _, item := range doc.Items {
			rates[item.ItemID] = item.DiscountPercentage
		}
		assert.Equal(t, 10.0, rates[MainProductItemID])
		assert.Equal(t, 50.0, rates["addon-motor"])
		// No override falls back to the document rate
		assert.Equal(t, 10.0, rates["addon-bracket"])

		// 1200@10% + 250@50% + 80@10%
		assert.InDelta(t, 253.0, doc.Totals.TotalDiscount, 0.001)
	})

	t.Run("missing customer", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		req := buildRequest()
		req.CustomerID = 99
		_, err := service.BuildDocument(ctx, models.DocumentQuote, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "customer not found")
	})

	t.Run("missing price entry", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		req := buildRequest()
		req.ProductID = 99
		_, err := service.BuildDocument(ctx, models.DocumentQuote, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no price")
	})

	t.Run("installation addon rejected on quotes", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		req := buildRequest()
		req.Addons = []models.AddonSelection{{Type: "installation", Selected: true, Description: "Installation", UnitPrice: 500}}
		_, err := service.BuildDocument(ctx, models.DocumentQuote, req)
		assert.Error(t, err)
	})
}

func TestRenderDocument(t *testing.T) {
	ctx := context.Background()
	db := seededDocumentDB()
	service := NewDocumentService(db, NewPDFService(), nil, nil)

	created, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
	require.NoError(t, err)

	doc, pdfData, err := service.RenderDocument(ctx, models.DocumentQuote, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, doc.ID)
	assert.NotEmpty(t, pdfData)

	// Kind mismatch reads as not found
	_, _, err = service.RenderDocument(ctx, models.DocumentInvoice, created.ID)
	assert.Error(t, err)
}

func TestDocumentArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("archived copy is stored and streamed back", func(t *testing.T) {
		db := seededDocumentDB()
		archive := newFakeArchive()
		service := NewDocumentService(db, NewPDFService(), nil, archive)

		created, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
		require.NoError(t, err)

		// Distribution runs in the background
		require.Eventually(t, func() bool {
			db.mutex.Lock()
			defer db.mutex.Unlock()
			doc := db.documents[created.ID]
			return doc != nil && doc.ArchiveKey != ""
		}, 2*time.Second, 10*time.Millisecond)

		body, contentType, err := service.FetchArchivedDocument(ctx, models.DocumentQuote, created.ID)
		require.NoError(t, err)
		defer body.Close()

		assert.Equal(t, "application/pdf", contentType)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("archive URL derives from the stored key", func(t *testing.T) {
		db := seededDocumentDB()
		archive := newFakeArchive()
		service := NewDocumentService(db, NewPDFService(), nil, archive)

		doc := &models.Document{Kind: models.DocumentQuote, Number: "Q-00001"}
		assert.Empty(t, service.ArchiveURL(doc))

		doc.ArchiveKey = "documents/2026/Q-00001-acme-blinds.pdf"
		assert.Equal(t, "https://archive.example.com/documents/2026/Q-00001-acme-blinds.pdf", service.ArchiveURL(doc))
	})

	t.Run("no archive configured", func(t *testing.T) {
		db := seededDocumentDB()
		service := NewDocumentService(db, NewPDFService(), nil, nil)

		created, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
		require.NoError(t, err)

		assert.Empty(t, service.ArchiveURL(created))
		_, _, err = service.FetchArchivedDocument(ctx, models.DocumentQuote, created.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no document archive")
	})

	t.Run("document without an archived copy", func(t *testing.T) {
		db := seededDocumentDB()
		archive := newFakeArchive()
		service := NewDocumentService(db, NewPDFService(), nil, archive)

		created, err := service.BuildDocument(ctx, models.DocumentQuote, buildRequest())
		require.NoError(t, err)

		// Clear the key once distribution settles
		require.Eventually(t, func() bool {
			db.mutex.Lock()
			defer db.mutex.Unlock()
			doc := db.documents[created.ID]
			return doc != nil && doc.ArchiveKey != ""
		}, 2*time.Second, 10*time.Millisecond)
		require.NoError(t, db.SetDocumentArchiveKey(ctx, models.DocumentQuote, created.ID, ""))

		_, _, err = service.FetchArchivedDocument(ctx, models.DocumentQuote, created.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no archived copy")
	})
}

func TestRecordPaymentRequiresInvoice(t *testing.T) {
	ctx := context.Background()
	db := seededDocumentDB()
	service := NewDocumentService(db, NewPDFService(), nil, nil)

	_, err := service.RecordPayment(ctx, 42, models.RecordPaymentRequest{Amount: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice not found")

	req := buildRequest()
	quoteID := int64(1)
	req.QuoteID = &quoteID
	invoice, err := service.BuildDocument(ctx, models.DocumentInvoice, req)
	require.NoError(t, err)

	payment, err := service.RecordPayment(ctx, invoice.ID, models.RecordPaymentRequest{Amount: 500, Method: "bank transfer"})
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, payment.InvoiceID)
	assert.Equal(t, 500.0, payment.Amount)
}
