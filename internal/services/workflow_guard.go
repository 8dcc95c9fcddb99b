package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"awning-admin-api/internal/models"
)

// WorkflowLookup is the collaborator the guard queries for a customer's
// workflows
type WorkflowLookup interface {
	GetWorkflowsForCustomer(ctx context.Context, customerID int64) ([]models.Workflow, error)
}

// GuardReason explains why a guard check did not resolve a workflow
type GuardReason string

const (
	ReasonNoCustomer   GuardReason = "no_customer"
	ReasonNoWorkflow   GuardReason = "no_workflow"
	ReasonLoadingError GuardReason = "loading_error"
)

// GuardResult is the outcome of a workflow-existence check
type GuardResult struct {
	OK           bool
	Reason       GuardReason
	WorkflowID   int64
	WorkflowName string
}

// WorkflowStatus is the per-open-task existence cache. Exists is nil until a
// check has run; the optimistic fast path and the authoritative lookup both
// write it.
type WorkflowStatus struct {
	Exists       *bool
	WorkflowID   int64
	WorkflowName string
	CheckedAt    time.Time
}

// WorkflowGuard decides, per task, whether the quote/invoice/site-visit
// quick actions are enabled and which workflow they act against
type WorkflowGuard struct {
	lookup WorkflowLookup
	mutex  sync.RWMutex
	cache  map[int64]*WorkflowStatus
}

// NewWorkflowGuard creates a new workflow guard
func NewWorkflowGuard(lookup WorkflowLookup) *WorkflowGuard {
	return &WorkflowGuard{
		lookup: lookup,
		cache:  make(map[int64]*WorkflowStatus),
	}
}

// CheckWorkflowExists resolves whether a workflow exists for the task's
// customer. When the task already references a workflow that appears in the
// lookup result, that one is selected; otherwise the first result is used.
// A failed lookup is reported as loading_error and treated like "no
// workflow" by callers, never surfaced as a user-facing error.
func (g *WorkflowGuard) CheckWorkflowExists(ctx context.Context, task *models.Task) GuardResult {
	if task.CustomerID == nil {
		return GuardResult{OK: false, Reason: ReasonNoCustomer}
	}

	workflows, err := g.lookup.GetWorkflowsForCustomer(ctx, *task.CustomerID)
	if err != nil {
		log.Printf("WARNING: workflow lookup failed for customer %d: %v", *task.CustomerID, err)
		return GuardResult{OK: false, Reason: ReasonLoadingError}
	}

	if len(workflows) == 0 {
		return GuardResult{OK: false, Reason: ReasonNoWorkflow}
	}

	selected := workflows[0]
	if task.WorkflowID != nil {
		for _, w := range workflows {
			if w.ID == *task.WorkflowID {
				selected = w
				break
			}
		}
	}

	return GuardResult{OK: true, WorkflowID: selected.ID, WorkflowName: selected.DisplayName()}
}

// LoadWorkflowStatus populates the existence cache for a freshly opened
// task. The cache is reset, written optimistically from task.WorkflowID if
// present, then overwritten with the authoritative lookup result. A failed
// lookup counts as zero workflows.
func (g *WorkflowGuard) LoadWorkflowStatus(ctx context.Context, task *models.Task) *WorkflowStatus {
	g.Reset(task.ID)

	if task.CustomerID == nil {
		return g.set(task.ID, boolPtr(false), 0, "")
	}

	// Optimistic fast path so create-workflow is disabled without waiting
	// for the lookup
	if task.WorkflowID != nil {
		g.set(task.ID, boolPtr(true), *task.WorkflowID, "")
	}

	result := g.CheckWorkflowExists(ctx, task)
	if !result.OK {
		return g.set(task.ID, boolPtr(false), 0, "")
	}
	return g.set(task.ID, boolPtr(true), result.WorkflowID, result.WorkflowName)
}

// Open primes the cache for a freshly opened task: the reset and the
// optimistic fast path run synchronously, the authoritative lookup runs in
// the background so the viewer is not held up. Readers always see the
// optimistic value until the lookup lands.
func (g *WorkflowGuard) Open(task *models.Task) {
	g.Reset(task.ID)

	if task.CustomerID == nil {
		g.set(task.ID, boolPtr(false), 0, "")
		return
	}

	if task.WorkflowID != nil {
		g.set(task.ID, boolPtr(true), *task.WorkflowID, "")
	}

	taskCopy := *task
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result := g.CheckWorkflowExists(ctx, &taskCopy)
		if !result.OK {
			g.set(taskCopy.ID, boolPtr(false), 0, "")
			return
		}
		g.set(taskCopy.ID, boolPtr(true), result.WorkflowID, result.WorkflowName)
	}()
}

// Status returns the cached existence state for a task, or nil when the task
// has not been opened
func (g *WorkflowGuard) Status(taskID int64) *WorkflowStatus {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.cache[taskID]
}

// Reset clears the cache entry for a task. Called each time the task detail
// viewer opens.
func (g *WorkflowGuard) Reset(taskID int64) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.cache, taskID)
}

func (g *WorkflowGuard) set(taskID int64, exists *bool, workflowID int64, name string) *WorkflowStatus {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	status := &WorkflowStatus{
		Exists:       exists,
		WorkflowID:   workflowID,
		WorkflowName: name,
		CheckedAt:    time.Now(),
	}
	g.cache[taskID] = status
	return status
}

// CanQuote reports whether the generate-quote action is enabled for a task
func (g *WorkflowGuard) CanQuote(task *models.Task) bool {
	return g.actionEnabled(task)
}

// CanInvoice reports whether the generate-invoice action is enabled
func (g *WorkflowGuard) CanInvoice(task *models.Task) bool {
	return g.actionEnabled(task)
}

// CanSiteVisit reports whether the add-site-visit action is enabled
func (g *WorkflowGuard) CanSiteVisit(task *models.Task) bool {
	return g.actionEnabled(task)
}

// CanCreateWorkflow reports whether create-workflow is enabled: a customer
// must be linked and the cache must not have resolved to an existing
// workflow. An unresolved cache does not block the user.
func (g *WorkflowGuard) CanCreateWorkflow(task *models.Task) bool {
	if task.CustomerID == nil {
		return false
	}
	status := g.Status(task.ID)
	return status == nil || status.Exists == nil || !*status.Exists
}

func (g *WorkflowGuard) actionEnabled(task *models.Task) bool {
	if task.CustomerID == nil {
		return false
	}
	status := g.Status(task.ID)
	return status != nil && status.Exists != nil && *status.Exists
}

// actionTargets maps each quick action to the screen the client navigates to
var actionTargets = map[models.QuickAction]string{
	models.ActionGenerateQuote:   "/quotes/create",
	models.ActionGenerateInvoice: "/invoices/create",
	models.ActionAddSiteVisit:    "/site-visits/create",
	models.ActionCreateWorkflow:  "/workflows/create",
}

// actionLabels name actions in blocked-banner messages
var actionLabels = map[models.QuickAction]string{
	models.ActionGenerateQuote:   "generate a quote",
	models.ActionGenerateInvoice: "generate an invoice",
	models.ActionAddSiteVisit:    "add a site visit",
}

// EvaluateAction runs the shared quick-action gate for a task. Blocked
// outcomes are part of the normal response flow, not errors. When the cache
// is unresolved the check runs in-line and the response carries
// Checking=true.
func (g *WorkflowGuard) EvaluateAction(ctx context.Context, task *models.Task, customerName string, action models.QuickAction) models.QuickActionResponse {
	resp := models.QuickActionResponse{Action: string(action)}

	if !models.CategoryPermits(task.Category, action) {
		resp.Outcome = "not_permitted"
		resp.Message = fmt.Sprintf("tasks in category %q do not allow this action", task.Category)
		return resp
	}

	if task.CustomerID == nil {
		resp.Outcome = "no_customer"
		resp.Message = "create or link a customer before using this action"
		return resp
	}

	if action == models.ActionCreateWorkflow {
		if !g.CanCreateWorkflow(task) {
			resp.Outcome = "blocked"
			resp.Message = "a workflow already exists for this customer"
			return resp
		}
		resp.Outcome = "proceed"
		resp.NavigateTo = actionTargets[action]
		resp.Params = g.navParams(task, customerName, 0)
		return resp
	}

	status := g.Status(task.ID)
	if status == nil || status.Exists == nil {
		// Unresolved cache: check in the moment, surfacing the transient
		// checking state to the caller
		resp.Checking = true
		result := g.CheckWorkflowExists(ctx, task)
		if !result.OK {
			g.set(task.ID, boolPtr(false), 0, "")
			resp.Outcome = "blocked"
			resp.Message = fmt.Sprintf("no workflow yet for this customer, cannot %s", actionLabels[action])
			return resp
		}
		status = g.set(task.ID, boolPtr(true), result.WorkflowID, result.WorkflowName)
	}

	if !*status.Exists {
		resp.Outcome = "blocked"
		resp.Message = fmt.Sprintf("no workflow yet for this customer, cannot %s", actionLabels[action])
		return resp
	}

	// Invoicing without a quote redirects to quote creation instead
	if action == models.ActionGenerateInvoice && task.QuoteID == nil {
		resp.Outcome = "redirect_to_quote"
		resp.Message = "no quote exists for this task; create a quote first"
		resp.NavigateTo = actionTargets[models.ActionGenerateQuote]
		resp.Params = g.navParams(task, customerName, status.WorkflowID)
		return resp
	}

	resp.Outcome = "proceed"
	resp.NavigateTo = actionTargets[action]
	resp.Params = g.navParams(task, customerName, status.WorkflowID)
	return resp
}

func (g *WorkflowGuard) navParams(task *models.Task, customerName string, workflowID int64) map[string]string {
	params := map[string]string{
		"taskId":       strconv.FormatInt(task.ID, 10),
		"customerId":   strconv.FormatInt(*task.CustomerID, 10),
		"customerName": customerName,
	}
	if workflowID != 0 {
		params["workflowId"] = strconv.FormatInt(workflowID, 10)
	}
	return params
}

func boolPtr(b bool) *bool {
	return &b
}
