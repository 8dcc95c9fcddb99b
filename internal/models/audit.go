package models

import "time"

// AuditEntry is one row in the generic entity audit log
type AuditEntry struct {
	ID         int64     `bson:"_id" json:"id"`
	EntityType string    `bson:"entityType" json:"entityType"`
	EntityID   int64     `bson:"entityId" json:"entityId"`
	Action     string    `bson:"action" json:"action"` // create, update, delete
	UserID     int64     `bson:"userId,omitempty" json:"userId,omitempty"`
	UserName   string    `bson:"userName,omitempty" json:"userName,omitempty"`
	Details    string    `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// TaskHistoryEntry is one row in the task-history audit log, recorded on
// assignment, status change, and linkage events
type TaskHistoryEntry struct {
	ID        int64     `bson:"_id" json:"id"`
	TaskID    int64     `bson:"taskId" json:"taskId"`
	Action    string    `bson:"action" json:"action"`
	UserID    int64     `bson:"userId,omitempty" json:"userId,omitempty"`
	UserName  string    `bson:"userName,omitempty" json:"userName,omitempty"`
	OldValue  string    `bson:"oldValue,omitempty" json:"oldValue,omitempty"`
	NewValue  string    `bson:"newValue,omitempty" json:"newValue,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// AuditFilter holds the filter state of a paginated audit read
type AuditFilter struct {
	From       *time.Time
	To         *time.Time
	Action     string
	Search     string
	EntityType string
	TaskID     int64
	UserID     int64
	Page       int
	PageSize   int
}
