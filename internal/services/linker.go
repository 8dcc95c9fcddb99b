package services

import (
	"context"
	"log"
	"sync"
	"time"

	"awning-admin-api/internal/models"
)

// TaskLinkStore is the collaborator the linker uses to re-fetch tasks and
// write the workflow linkage back
type TaskLinkStore interface {
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	LinkWorkflowToTask(ctx context.Context, id, workflowID int64) error
}

// PendingWorkflowLink records that the user navigated away from a task to
// create a workflow. Consumed exactly once when navigation returns to the
// inbox.
type PendingWorkflowLink struct {
	TaskID          int64
	Category        models.TaskCategory
	IncomingEmailID string
	RecordedAt      time.Time
}

// Linker closes the loop when task-driven navigation creates a new customer
// or workflow elsewhere and then returns to the inbox. The link-back is
// best-effort: every failure is logged and swallowed.
type Linker struct {
	tasks  TaskLinkStore
	lookup WorkflowLookup

	mutex          sync.Mutex
	pendingRefresh bool
	pendingLinks   map[int64]PendingWorkflowLink
}

// NewLinker creates a new linker
func NewLinker(tasks TaskLinkStore, lookup WorkflowLookup) *Linker {
	return &Linker{
		tasks:        tasks,
		lookup:       lookup,
		pendingLinks: make(map[int64]PendingWorkflowLink),
	}
}

// RecordPendingRefresh marks the task list as needing a re-fetch on the next
// return to the inbox
func (l *Linker) RecordPendingRefresh() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.pendingRefresh = true
}

// RecordPendingLink records a workflow-creation departure for a task
func (l *Linker) RecordPendingLink(taskID int64, category models.TaskCategory, incomingEmailID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.pendingLinks[taskID] = PendingWorkflowLink{
		TaskID:          taskID,
		Category:        category,
		IncomingEmailID: incomingEmailID,
		RecordedAt:      time.Now(),
	}
}

// PendingLink returns the pending link for a task, if any
func (l *Linker) PendingLink(taskID int64) (PendingWorkflowLink, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	link, ok := l.pendingLinks[taskID]
	return link, ok
}

// OnReturnToInbox consumes all pending state recorded before navigation
// left the inbox. It reports whether the task list should be re-fetched.
func (l *Linker) OnReturnToInbox(ctx context.Context) bool {
	l.mutex.Lock()
	refresh := l.pendingRefresh
	l.pendingRefresh = false
	links := make([]PendingWorkflowLink, 0, len(l.pendingLinks))
	for _, link := range l.pendingLinks {
		links = append(links, link)
	}
	l.pendingLinks = make(map[int64]PendingWorkflowLink)
	l.mutex.Unlock()

	for _, link := range links {
		if l.consumePendingLink(ctx, link) {
			refresh = true
		}
	}

	return refresh
}

// consumePendingLink re-associates the newest workflow of the task's
// customer back onto the task. Returns true when the task was updated.
func (l *Linker) consumePendingLink(ctx context.Context, link PendingWorkflowLink) bool {
	task, err := l.tasks.GetTaskByID(ctx, link.TaskID)
	if err != nil {
		log.Printf("WARNING: pending link for task %d: fetch failed: %v", link.TaskID, err)
		return false
	}
	if task == nil || task.CustomerID == nil {
		log.Printf("WARNING: pending link for task %d: no customer to link through", link.TaskID)
		return false
	}

	workflows, err := l.lookup.GetWorkflowsForCustomer(ctx, *task.CustomerID)
	if err != nil {
		log.Printf("WARNING: pending link for task %d: workflow lookup failed: %v", link.TaskID, err)
		return false
	}
	if len(workflows) == 0 {
		log.Printf("WARNING: pending link for task %d: customer %d has no workflows", link.TaskID, *task.CustomerID)
		return false
	}

	// Workflow ids are allocated monotonically, so the highest id is the
	// newest record
	newest := workflows[0]
	for _, w := range workflows[1:] {
		if w.ID > newest.ID {
			newest = w
		}
	}

	if err := l.tasks.LinkWorkflowToTask(ctx, link.TaskID, newest.ID); err != nil {
		log.Printf("WARNING: pending link for task %d: link to workflow %d failed: %v", link.TaskID, newest.ID, err)
		return false
	}

	log.Printf("Linked workflow %d to task %d after return to inbox", newest.ID, link.TaskID)
	return true
}
