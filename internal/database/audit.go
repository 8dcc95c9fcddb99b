package database

import (
	"context"
	"fmt"
	"time"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertAuditEntry writes one row to the generic entity audit log
func (c *MongoDBClient) InsertAuditEntry(ctx context.Context, entry models.AuditEntry) error {
	id, err := c.NextSequence(ctx, "audit_log")
	if err != nil {
		return err
	}
	entry.ID = id
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := c.audit.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// InsertTaskHistory writes one row to the task-history audit log
func (c *MongoDBClient) InsertTaskHistory(ctx context.Context, entry models.TaskHistoryEntry) error {
	id, err := c.NextSequence(ctx, "task_history")
	if err != nil {
		return err
	}
	entry.ID = id
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := c.taskHistory.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert task history entry: %w", err)
	}
	return nil
}

// auditQueryFilter builds the Mongo filter for an audit read
func auditQueryFilter(filter models.AuditFilter, searchFields []string) bson.M {
	query := bson.M{}
	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["createdAt"] = dateRange
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.EntityType != "" {
		query["entityType"] = filter.EntityType
	}
	if filter.TaskID != 0 {
		query["taskId"] = filter.TaskID
	}
	if filter.UserID != 0 {
		query["userId"] = filter.UserID
	}
	if filter.Search != "" {
		regex := primitive.Regex{Pattern: filter.Search, Options: "i"}
		clauses := make([]bson.M, len(searchFields))
		for i, f := range searchFields {
			clauses[i] = bson.M{f: regex}
		}
		query["$or"] = clauses
	}
	return query
}

// ListAuditEntries returns one page of the entity audit log plus the total
// match count
func (c *MongoDBClient) ListAuditEntries(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, int64, error) {
	query := auditQueryFilter(filter, []string{"details", "userName", "action"})

	total, err := c.audit.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	cursor, err := c.audit.Find(ctx, query, pageOptions(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, total, nil
}

// ListTaskHistory returns one page of the task-history audit log plus the
// total match count
func (c *MongoDBClient) ListTaskHistory(ctx context.Context, filter models.AuditFilter) ([]models.TaskHistoryEntry, int64, error) {
	query := auditQueryFilter(filter, []string{"oldValue", "newValue", "userName", "action"})

	total, err := c.taskHistory.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count task history: %w", err)
	}

	cursor, err := c.taskHistory.Find(ctx, query, pageOptions(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query task history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.TaskHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode task history: %w", err)
	}

	return entries, total, nil
}

func pageOptions(filter models.AuditFilter) *options.FindOptions {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
}
