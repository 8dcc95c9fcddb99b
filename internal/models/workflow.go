package models

import "time"

// Workflow is the per-customer sales-process record. The boolean stage flags
// gate which downstream documents can be produced against it.
type Workflow struct {
	ID          int64     `bson:"_id" json:"id"`
	CustomerID  int64     `bson:"customerId" json:"customerId"`
	ProductID   int64     `bson:"productId" json:"productId"`
	ProductName string    `bson:"productName,omitempty" json:"productName,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`

	// Stage flags, enabled as the sale progresses
	InitialEnquiry bool `bson:"initialEnquiry" json:"initialEnquiry"`
	Quote          bool `bson:"quote" json:"quote"`
	ShowroomInvite bool `bson:"showroomInvite" json:"showroomInvite"`
	SiteVisit      bool `bson:"siteVisit" json:"siteVisit"`
	Invoice        bool `bson:"invoice" json:"invoice"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName returns the name shown for a workflow in task detail views
func (w *Workflow) DisplayName() string {
	if w.ProductName != "" {
		return w.ProductName
	}
	return w.Description
}

// SiteVisit is a booked visit to a customer's property, created through the
// add-site-visit quick action.
type SiteVisit struct {
	ID          int64     `bson:"_id" json:"id"`
	WorkflowID  int64     `bson:"workflowId" json:"workflowId"`
	CustomerID  int64     `bson:"customerId" json:"customerId"`
	TaskID      int64     `bson:"taskId,omitempty" json:"taskId,omitempty"`
	ScheduledAt time.Time `bson:"scheduledAt" json:"scheduledAt"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// FollowUp is a reminder generated for a stale enquiry-stage workflow
type FollowUp struct {
	ID           int64     `bson:"_id" json:"id"`
	WorkflowID   int64     `bson:"workflowId" json:"workflowId"`
	CustomerID   int64     `bson:"customerId" json:"customerId"`
	CustomerName string    `bson:"customerName" json:"customerName"`
	Reason       string    `bson:"reason" json:"reason"`
	GeneratedAt  time.Time `bson:"generatedAt" json:"generatedAt"`
	Done         bool      `bson:"done" json:"done"`
}
