package database

import (
	"context"
	"fmt"
	"time"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collectionFor returns the collection holding documents of the given kind.
// Quotes and invoices live in separate collections with independent numeric
// sequences.
func (c *MongoDBClient) collectionFor(kind models.DocumentKind) *mongo.Collection {
	if kind == models.DocumentInvoice {
		return c.invoices
	}
	return c.quotes
}

// CreateDocument inserts a quote or invoice and allocates its id and number.
// Quotes are numbered Q-00001, invoices INV-00001.
func (c *MongoDBClient) CreateDocument(ctx context.Context, doc models.Document) (*models.Document, error) {
	id, err := c.NextSequence(ctx, string(doc.Kind)+"s")
	if err != nil {
		return nil, err
	}

	prefix := "Q"
	if doc.Kind == models.DocumentInvoice {
		prefix = "INV"
	}

	now := time.Now()
	doc.ID = id
	doc.Number = fmt.Sprintf("%s-%05d", prefix, id)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := c.collectionFor(doc.Kind).InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", doc.Kind, err)
	}

	return &doc, nil
}

// GetDocument retrieves a quote or invoice, returning nil when not found
func (c *MongoDBClient) GetDocument(ctx context.Context, kind models.DocumentKind, id int64) (*models.Document, error) {
	var doc models.Document
	err := c.collectionFor(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s %d: %w", kind, id, err)
	}
	return &doc, nil
}

// ListDocumentsForWorkflow returns all documents of one kind attached to a
// workflow, newest first
func (c *MongoDBClient) ListDocumentsForWorkflow(ctx context.Context, kind models.DocumentKind, workflowID int64) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.collectionFor(kind).Find(ctx, bson.M{"workflowId": workflowID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %ss for workflow %d: %w", kind, workflowID, err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

// SetDocumentArchiveKey records where the rendered PDF was archived
func (c *MongoDBClient) SetDocumentArchiveKey(ctx context.Context, kind models.DocumentKind, id int64, key string) error {
	_, err := c.collectionFor(kind).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"archiveKey": key, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set archive key on %s %d: %w", kind, id, err)
	}
	return nil
}

// RecordPayment inserts a payment and increments the invoice's paid amount
func (c *MongoDBClient) RecordPayment(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	id, err := c.NextSequence(ctx, "payments")
	if err != nil {
		return nil, err
	}

	payment.ID = id
	if payment.ReceivedAt.IsZero() {
		payment.ReceivedAt = time.Now()
	}

	if _, err := c.payments.InsertOne(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	result, err := c.invoices.UpdateOne(ctx,
		bson.M{"_id": payment.InvoiceID},
		bson.M{
			"$inc": bson.M{"amountPaid": payment.Amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice %d paid amount: %w", payment.InvoiceID, err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("invoice not found: %d", payment.InvoiceID)
	}

	return &payment, nil
}

// ListPaymentsForInvoice returns all payments recorded against an invoice
func (c *MongoDBClient) ListPaymentsForInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	cursor, err := c.payments.Find(ctx, bson.M{"invoiceId": invoiceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for invoice %d: %w", invoiceID, err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	return payments, nil
}
