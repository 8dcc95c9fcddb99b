package models

// IngestTaskRequest represents an inbound email handed over by the mail
// pipeline. Validated against schemas/inbound_email.json before binding.
// IncomingEmailID may be omitted for manually raised tasks; a synthetic id
// is generated at parse time.
type IngestTaskRequest struct {
	IncomingEmailID string `json:"incomingEmailId"`
	FromAddress     string `json:"fromAddress" binding:"required"`
	Subject         string `json:"subject" binding:"required"`
	Body            string `json:"body"`
	Category        string `json:"category" binding:"required"`
	Priority        string `json:"priority"`
}

// TaskListQuery holds the paginated task-list parameters
type TaskListQuery struct {
	Statuses       []string `form:"status"`
	Page           int      `form:"page,default=1"`
	PageSize       int      `form:"pageSize,default=20"`
	SortField      string   `form:"sortField,default=createdAt"`
	SortDir        string   `form:"sortDir,default=desc"`
	Search         string   `form:"search"`
	Priority       string   `form:"priority"`
	AssignedUserID int64    `form:"assignedUserId"`
}

// UpdateTaskStatusRequest moves a task to a new triage status
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignTaskRequest assigns a task to a user
type AssignTaskRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// LinkCustomerRequest links an existing customer onto a task
type LinkCustomerRequest struct {
	CustomerID int64 `json:"customerId" binding:"required"`
}

// CreateCustomerRequest creates a new customer record
type CreateCustomerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	CompanyNumber string `json:"companyNumber"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	Postcode      string `json:"postcode"`
}

// CustomerLookupQuery finds an existing customer by email or company number,
// used to decide "link to existing" vs "create new"
type CustomerLookupQuery struct {
	Email         string `form:"email"`
	CompanyNumber string `form:"companyNumber"`
}

// CreateWorkflowRequest creates a workflow for a customer. When TaskID is
// set, the linker records a pending link-back for the originating task.
type CreateWorkflowRequest struct {
	CustomerID  int64  `json:"customerId" binding:"required"`
	ProductID   int64  `json:"productId" binding:"required"`
	ProductName string `json:"productName"`
	Description string `json:"description"`
	TaskID      int64  `json:"taskId"`
}

// UpdateWorkflowStagesRequest toggles the workflow stage flags
type UpdateWorkflowStagesRequest struct {
	InitialEnquiry *bool `json:"initialEnquiry"`
	Quote          *bool `json:"quote"`
	ShowroomInvite *bool `json:"showroomInvite"`
	SiteVisit      *bool `json:"siteVisit"`
	Invoice        *bool `json:"invoice"`
}

// AddonSelection selects a value for one addon type. An empty Description
// with zero UnitPrice and Selected=false removes the addon's line item.
// DiscountPercentage, when set, overrides the document-level rate for this
// line only.
type AddonSelection struct {
	Type               string   `json:"type" binding:"required"`
	Selected           bool     `json:"selected"`
	Description        string   `json:"description"`
	UnitPrice          float64  `json:"unitPrice"`
	Quantity           int      `json:"quantity"`
	DiscountPercentage *float64 `json:"discountPercentage"`
}

// BuildDocumentRequest creates a quote or invoice from the accumulated
// selections of the builder screen
type BuildDocumentRequest struct {
	CustomerID         int64            `json:"customerId" binding:"required"`
	WorkflowID         int64            `json:"workflowId" binding:"required"`
	TaskID             int64            `json:"taskId"`
	QuoteID            *int64           `json:"quoteId"` // invoices reference their quote
	ProductID          int64            `json:"productId" binding:"required"`
	WidthCm            int              `json:"widthCm" binding:"required"`
	ProjectionCm       int              `json:"projectionCm" binding:"required"`
	Addons             []AddonSelection `json:"addons"`
	DiscountPercentage float64          `json:"discountPercentage"`
	TaxRate            float64          `json:"taxRate"`
	Terms              string           `json:"terms"`
	EmailTo            string           `json:"emailTo" binding:"omitempty,email"`
}

// RecordPaymentRequest records a payment against an invoice
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// BookSiteVisitRequest books a site visit against a workflow
type BookSiteVisitRequest struct {
	ScheduledAt string `json:"scheduledAt" binding:"required"` // RFC 3339
	Notes       string `json:"notes"`
}

// TaskListResponse is one page of the task inbox
type TaskListResponse struct {
	Tasks      []Task `json:"tasks"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"totalPages"`
	PageWindow []int  `json:"pageWindow"`
}

// WorkflowStatusResponse reports the workflow-existence cache for a task.
// State is "unknown" until the authoritative lookup lands.
type WorkflowStatusResponse struct {
	TaskID            int64  `json:"taskId"`
	State             string `json:"state"` // unknown, exists, none
	WorkflowID        int64  `json:"workflowId,omitempty"`
	WorkflowName      string `json:"workflowName,omitempty"`
	CanQuote          bool   `json:"canQuote"`
	CanInvoice        bool   `json:"canInvoice"`
	CanSiteVisit      bool   `json:"canSiteVisit"`
	CanCreateWorkflow bool   `json:"canCreateWorkflow"`
}

// QuickActionResponse is the outcome of invoking a quick action. Blocked
// outcomes are part of the normal flow, not HTTP errors.
type QuickActionResponse struct {
	Outcome    string            `json:"outcome"` // proceed, blocked, no_customer, redirect_to_quote, not_permitted
	Action     string            `json:"action"`
	Message    string            `json:"message,omitempty"`
	Checking   bool              `json:"checking,omitempty"`
	NavigateTo string            `json:"navigateTo,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuthRequest requests a JWT for a back-office user
type AuthRequest struct {
	UserID   int64  `json:"userId" binding:"required"`
	UserName string `json:"userName" binding:"required"`
	Role     string `json:"role"`
}

// AuthResponse carries the issued token
type AuthResponse struct {
	Token string `json:"token"`
}
