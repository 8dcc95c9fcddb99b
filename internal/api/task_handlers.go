package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"awning-admin-api/internal/models"
	"awning-admin-api/internal/services"
	"awning-admin-api/internal/validation"

	"github.com/gin-gonic/gin"
)

// IngestTaskHandler handles POST /api/tasks/ingest. The mail pipeline posts
// classified inbound emails here; the payload is schema-validated before a
// task is created.
func (h *Handlers) IngestTaskHandler(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	req, err := validation.ValidateAndParseIngestRequest(payload, h.ingestSchema)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.CreateTask(ctx, models.Task{
		IncomingEmailID: req.IncomingEmailID,
		FromAddress:     req.FromAddress,
		Subject:         req.Subject,
		Body:            req.Body,
		Category:        models.TaskCategory(req.Category),
		Status:          models.TaskStatusNew,
		Priority:        req.Priority,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	h.audit.RecordTaskEvent(task.ID, "created", 0, "mail-pipeline", "", string(task.Status))

	c.JSON(http.StatusCreated, task)
}

// ListTasksHandler handles GET /api/tasks. When the caller signals a return
// from another screen (returned=true), pending workflow links are consumed
// before the page is queried so the results already reflect them.
func (h *Handlers) ListTasksHandler(c *gin.Context) {
	var query models.TaskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if c.Query("returned") == "true" {
		h.linker.OnReturnToInbox(ctx)
	}

	tasks, total, err := h.db.ListTasks(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	totalPages := services.TotalPages(total, query.PageSize)
	c.JSON(http.StatusOK, models.TaskListResponse{
		Tasks:      tasks,
		Page:       query.Page,
		PageSize:   query.PageSize,
		Total:      total,
		TotalPages: totalPages,
		PageWindow: services.PageWindow(query.Page, totalPages),
	})
}

// GetTaskHandler handles GET /api/tasks/:id
func (h *Handlers) GetTaskHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// OpenTaskHandler handles POST /api/tasks/:id/open. Opening a task resets
// the workflow-existence cache and primes it: the optimistic value is
// available immediately, the authoritative lookup completes in the
// background and is read via the workflow-status endpoint. With wait=true
// the lookup runs in-line instead and the response carries the settled
// state in one round trip.
func (h *Handlers) OpenTaskHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if c.Query("wait") == "true" {
		h.guard.LoadWorkflowStatus(ctx, task)
	} else {
		h.guard.Open(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"task":           task,
		"workflowStatus": h.workflowStatusResponse(task),
	})
}

// WorkflowStatusHandler handles GET /api/tasks/:id/workflow-status, the poll
// target while the background lookup settles
func (h *Handlers) WorkflowStatusHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	c.JSON(http.StatusOK, h.workflowStatusResponse(task))
}

func (h *Handlers) workflowStatusResponse(task *models.Task) models.WorkflowStatusResponse {
	resp := models.WorkflowStatusResponse{
		TaskID:            task.ID,
		State:             "unknown",
		CanQuote:          h.guard.CanQuote(task),
		CanInvoice:        h.guard.CanInvoice(task),
		CanSiteVisit:      h.guard.CanSiteVisit(task),
		CanCreateWorkflow: h.guard.CanCreateWorkflow(task),
	}

	status := h.guard.Status(task.ID)
	if status != nil && status.Exists != nil {
		if *status.Exists {
			resp.State = "exists"
			resp.WorkflowID = status.WorkflowID
			resp.WorkflowName = status.WorkflowName
		} else {
			resp.State = "none"
		}
	}
	return resp
}

// UpdateTaskStatusHandler handles PUT /api/tasks/:id/status
func (h *Handlers) UpdateTaskStatusHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStatus := models.TaskStatus(req.Status)
	valid := false
	for _, s := range models.ValidTaskStatuses {
		if s == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task status: " + req.Status})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := h.db.UpdateTaskStatus(ctx, id, newStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task status"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordTaskEvent(id, "status_changed", userID, userName, string(task.Status), string(newStatus))

	c.JSON(http.StatusOK, gin.H{"id": id, "status": newStatus})
}

// AssignTaskHandler handles PUT /api/tasks/:id/assign
func (h *Handlers) AssignTaskHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := h.db.AssignTask(ctx, id, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign task"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordTaskEvent(id, "assigned", userID, userName,
		strconv.FormatInt(task.AssignedUserID, 10), strconv.FormatInt(req.UserID, 10))

	c.JSON(http.StatusOK, gin.H{"id": id, "assignedUserId": req.UserID})
}

// LinkCustomerHandler handles PUT /api/tasks/:id/customer. Linking a
// customer invalidates the workflow-existence cache for the task.
func (h *Handlers) LinkCustomerHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.LinkCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	customer, err := h.db.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	if err := h.db.SetTaskCustomer(ctx, id, req.CustomerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link customer"})
		return
	}

	h.guard.Reset(id)

	userID, userName := currentUser(c)
	h.audit.RecordTaskEvent(id, "customer_linked", userID, userName, "", strconv.FormatInt(req.CustomerID, 10))

	c.JSON(http.StatusOK, gin.H{"id": id, "customerId": req.CustomerID})
}

// QuickActionHandler handles POST /api/tasks/:id/actions/:action. Blocked
// and redirect outcomes are returned with 200; they are decisions, not
// failures. A proceed on create_workflow records the pending link-back so
// the new workflow is attached to this task on return to the inbox.
func (h *Handlers) QuickActionHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	action := models.QuickAction(c.Param("action"))
	switch action {
	case models.ActionGenerateQuote, models.ActionGenerateInvoice,
		models.ActionAddSiteVisit, models.ActionCreateWorkflow:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + string(action)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	task, err := h.db.GetTaskByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	customerName := ""
	if task.CustomerID != nil {
		customer, err := h.db.GetCustomerByID(ctx, *task.CustomerID)
		if err != nil {
			log.Printf("WARNING: failed to load customer %d for task %d: %v", *task.CustomerID, id, err)
		} else if customer != nil {
			customerName = customer.Name
		}
	}

	resp := h.guard.EvaluateAction(ctx, task, customerName, action)

	if action == models.ActionCreateWorkflow && resp.Outcome == "proceed" {
		h.linker.RecordPendingRefresh()
		h.linker.RecordPendingLink(task.ID, task.Category, task.IncomingEmailID)
	}

	c.JSON(http.StatusOK, resp)
}
