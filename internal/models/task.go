package models

import "time"

// TaskStatus represents the triage status of an inbox task
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "New"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusMoreInfo   TaskStatus = "More Info"
	TaskStatusClosed     TaskStatus = "Closed"
	TaskStatusReopened   TaskStatus = "Reopened"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// TaskCategory classifies the inbound email a task was created from
type TaskCategory string

const (
	CategoryQuoteCreation   TaskCategory = "quote_creation"
	CategoryInvoiceDue      TaskCategory = "invoice_due"
	CategorySiteVisit       TaskCategory = "site_visit_meeting"
	CategoryInitialEnquiry  TaskCategory = "initial_enquiry"
	CategoryGeneralInquiry  TaskCategory = "general_inquiry"
	CategoryShowroomBooking TaskCategory = "showroom_booking"
	CategoryComplaint       TaskCategory = "complaint"
	CategoryJunk            TaskCategory = "junk"
)

// ValidTaskStatuses lists every status a task can be moved into via the API
var ValidTaskStatuses = []TaskStatus{
	TaskStatusNew,
	TaskStatusInProgress,
	TaskStatusMoreInfo,
	TaskStatusClosed,
	TaskStatusReopened,
	TaskStatusCompleted,
}

// Task represents an inbox item created from an inbound customer email.
// Tasks are never deleted through this API.
type Task struct {
	ID              int64        `bson:"_id" json:"id"`
	IncomingEmailID string       `bson:"incomingEmailId" json:"incomingEmailId"`
	FromAddress     string       `bson:"fromAddress" json:"fromAddress"`
	Subject         string       `bson:"subject" json:"subject"`
	Body            string       `bson:"body" json:"body"`
	Category        TaskCategory `bson:"category" json:"category"`
	Status          TaskStatus   `bson:"status" json:"status"`
	Priority        string       `bson:"priority,omitempty" json:"priority,omitempty"`
	AssignedUserID  int64        `bson:"assignedUserId,omitempty" json:"assignedUserId,omitempty"`
	CustomerID      *int64       `bson:"customerId,omitempty" json:"customerId,omitempty"`
	WorkflowID      *int64       `bson:"workflowId,omitempty" json:"workflowId,omitempty"`
	QuoteID         *int64       `bson:"quoteId,omitempty" json:"quoteId,omitempty"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// QuickAction is a one-click shortcut on a task, subject to workflow-guard
// enablement rules
type QuickAction string

const (
	ActionGenerateQuote   QuickAction = "generate_quote"
	ActionGenerateInvoice QuickAction = "generate_invoice"
	ActionAddSiteVisit    QuickAction = "add_site_visit"
	ActionCreateWorkflow  QuickAction = "create_workflow"
)

// categoryPermissions maps a task category to the quick actions it permits.
// Categories not listed here permit every action.
var categoryPermissions = map[TaskCategory][]QuickAction{
	CategoryInvoiceDue:      {ActionGenerateInvoice, ActionCreateWorkflow},
	CategorySiteVisit:       {ActionAddSiteVisit, ActionCreateWorkflow},
	CategoryShowroomBooking: {ActionAddSiteVisit, ActionCreateWorkflow},
	CategoryComplaint:       {ActionCreateWorkflow},
	CategoryJunk:            {},
}

// PermittedActions returns the quick actions a category allows, independent
// of whether a workflow exists for the task's customer.
func PermittedActions(category TaskCategory) []QuickAction {
	if actions, ok := categoryPermissions[category]; ok {
		return actions
	}
	return []QuickAction{ActionGenerateQuote, ActionGenerateInvoice, ActionAddSiteVisit, ActionCreateWorkflow}
}

// CategoryPermits reports whether the category allows the given quick action
func CategoryPermits(category TaskCategory, action QuickAction) bool {
	for _, a := range PermittedActions(category) {
		if a == action {
			return true
		}
	}
	return false
}
