package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// CreateWorkflowHandler handles POST /api/workflows. Only the
// initial-enquiry stage is enabled on a fresh workflow. When the request
// names an originating task, a pending link-back is recorded so the task
// picks up the workflow on the next return to the inbox.
func (h *Handlers) CreateWorkflowHandler(c *gin.Context) {
	var req models.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	workflow, err := h.db.CreateWorkflow(ctx, models.Workflow{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create workflow"})
		return
	}

	if req.TaskID != 0 {
		h.linker.RecordPendingRefresh()
		if _, recorded := h.linker.PendingLink(req.TaskID); !recorded {
			task, err := h.db.GetTaskByID(ctx, req.TaskID)
			if err != nil || task == nil {
				log.Printf("WARNING: failed to load task %d for workflow link-back: %v", req.TaskID, err)
			} else {
				h.linker.RecordPendingLink(task.ID, task.Category, task.IncomingEmailID)
			}
		}
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("workflow", workflow.ID, "create", userID, userName, workflow.DisplayName())

	c.JSON(http.StatusCreated, workflow)
}

// GetWorkflowHandler handles GET /api/workflows/:id
func (h *Handlers) GetWorkflowHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	workflow, err := h.db.GetWorkflowByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workflow"})
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// ListCustomerWorkflowsHandler handles GET /api/customers/:id/workflows
func (h *Handlers) ListCustomerWorkflowsHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	workflows, err := h.db.GetWorkflowsForCustomer(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workflows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

// UpdateWorkflowStagesHandler handles PUT /api/workflows/:id/stages. Only
// the flags present in the request body are changed.
func (h *Handlers) UpdateWorkflowStagesHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateWorkflowStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := bson.M{}
	if req.InitialEnquiry != nil {
		fields["initialEnquiry"] = *req.InitialEnquiry
	}
	if req.Quote != nil {
		fields["quote"] = *req.Quote
	}
	if req.ShowroomInvite != nil {
		fields["showroomInvite"] = *req.ShowroomInvite
	}
	if req.SiteVisit != nil {
		fields["siteVisit"] = *req.SiteVisit
	}
	if req.Invoice != nil {
		fields["invoice"] = *req.Invoice
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one stage flag is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	workflow, err := h.db.GetWorkflowByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workflow"})
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return
	}

	if err := h.db.UpdateWorkflowStages(ctx, id, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update workflow stages"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("workflow", id, "update", userID, userName, "stage flags changed")

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// BookSiteVisitHandler handles POST /api/workflows/:id/site-visits. Booking
// a visit enables the workflow's site-visit stage as a side effect.
func (h *Handlers) BookSiteVisitHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.BookSiteVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduledAt, expected RFC 3339"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	workflow, err := h.db.GetWorkflowByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workflow"})
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found"})
		return
	}

	visit := models.SiteVisit{
		WorkflowID:  id,
		CustomerID:  workflow.CustomerID,
		ScheduledAt: scheduledAt,
		Notes:       req.Notes,
	}
	if taskID, err := strconv.ParseInt(c.Query("taskId"), 10, 64); err == nil {
		visit.TaskID = taskID
	}

	created, err := h.db.CreateSiteVisit(ctx, visit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book site visit"})
		return
	}

	if err := h.db.UpdateWorkflowStages(ctx, id, bson.M{"siteVisit": true}); err != nil {
		log.Printf("WARNING: failed to enable site-visit stage on workflow %d: %v", id, err)
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("site_visit", created.ID, "create", userID, userName,
		"scheduled for "+utils.FormatDate(created.ScheduledAt))

	c.JSON(http.StatusCreated, created)
}
