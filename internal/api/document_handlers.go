package api

import (
	"context"
	"net/http"
	"time"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateDocumentHandler handles POST /api/quotes and POST /api/invoices.
// Building an invoice requires a quoteId; the quick-action gate redirects
// callers without one before they reach this endpoint, so a missing quoteId
// here is a 400.
func (h *Handlers) CreateDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BuildDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if kind == models.DocumentInvoice && req.QuoteID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quoteId is required for invoices"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		doc, err := h.documents.BuildDocument(ctx, kind, req)
		if err != nil {
			respondError(c, err)
			return
		}

		userID, userName := currentUser(c)
		h.audit.RecordEntityAction(string(kind), doc.ID, "create", userID, userName, doc.Number)

		c.JSON(http.StatusCreated, doc)
	}
}

// GetDocumentHandler handles GET /api/quotes/:id and GET /api/invoices/:id
func (h *Handlers) GetDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		doc, err := h.db.GetDocument(ctx, kind, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
			return
		}
		if doc == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": string(kind) + " not found"})
			return
		}

		doc.ArchiveURL = h.documents.ArchiveURL(doc)
		c.JSON(http.StatusOK, doc)
	}
}

// DownloadDocumentHandler handles GET /api/quotes/:id/pdf and
// GET /api/invoices/:id/pdf. The PDF is rendered on demand; the filename is
// derived from the document number and customer name.
func (h *Handlers) DownloadDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		doc, pdfData, err := h.documents.RenderDocument(ctx, kind, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+services.DocumentFilename(doc)+`"`)
		c.Data(http.StatusOK, "application/pdf", pdfData)
	}
}

// ListWorkflowDocumentsHandler handles GET /api/workflows/:id/quotes and
// GET /api/workflows/:id/invoices
func (h *Handlers) ListWorkflowDocumentsHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflowID, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		docs, err := h.db.ListDocumentsForWorkflow(ctx, kind, workflowID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
			return
		}

		for i := range docs {
			docs[i].ArchiveURL = h.documents.ArchiveURL(&docs[i])
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	}
}

// DownloadArchivedDocumentHandler handles GET /api/quotes/:id/archive and
// GET /api/invoices/:id/archive, streaming the copy stored at creation time
func (h *Handlers) DownloadArchivedDocumentHandler(kind models.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		body, contentType, err := h.documents.FetchArchivedDocument(ctx, kind, id)
		if err != nil {
			respondError(c, err)
			return
		}
		defer body.Close()

		if contentType == "" {
			contentType = "application/pdf"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
	}
}

// RecordPaymentHandler handles POST /api/invoices/:id/payments
func (h *Handlers) RecordPaymentHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	payment, err := h.documents.RecordPayment(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("payment", payment.ID, "create", userID, userName, payment.Reference)

	c.JSON(http.StatusCreated, payment)
}

// ListPaymentsHandler handles GET /api/invoices/:id/payments
func (h *Handlers) ListPaymentsHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	payments, err := h.db.ListPaymentsForInvoice(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
