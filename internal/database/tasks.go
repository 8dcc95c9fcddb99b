package database

import (
	"context"
	"fmt"
	"time"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// taskSortFields maps API sort names to document fields. Anything else
// falls back to createdAt.
var taskSortFields = map[string]string{
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
	"subject":     "subject",
	"fromAddress": "fromAddress",
	"category":    "category",
	"status":      "status",
	"priority":    "priority",
}

// CreateTask inserts a new inbox task
func (c *MongoDBClient) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	id, err := c.NextSequence(ctx, "tasks")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := c.tasks.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return &task, nil
}

// GetTaskByID retrieves a task, returning nil when not found
func (c *MongoDBClient) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := c.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query task %d: %w", id, err)
	}
	return &task, nil
}

// ListTasks returns one page of tasks matching the query plus the total
// match count
func (c *MongoDBClient) ListTasks(ctx context.Context, query models.TaskListQuery) ([]models.Task, int64, error) {
	filter := bson.M{}
	if len(query.Statuses) > 0 {
		filter["status"] = bson.M{"$in": query.Statuses}
	}
	if query.Priority != "" {
		filter["priority"] = query.Priority
	}
	if query.AssignedUserID != 0 {
		filter["assignedUserId"] = query.AssignedUserID
	}
	if query.Search != "" {
		regex := primitive.Regex{Pattern: query.Search, Options: "i"}
		filter["$or"] = []bson.M{
			{"subject": regex},
			{"fromAddress": regex},
			{"body": regex},
		}
	}

	total, err := c.tasks.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	sortField, ok := taskSortFields[query.SortField]
	if !ok {
		sortField = "createdAt"
	}
	sortDir := -1
	if query.SortDir == "asc" {
		sortDir = 1
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDir}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := c.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, fmt.Errorf("failed to decode tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTaskStatus moves a task to a new status
func (c *MongoDBClient) UpdateTaskStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	return c.updateTask(ctx, id, bson.M{"status": status})
}

// AssignTask assigns a task to a user
func (c *MongoDBClient) AssignTask(ctx context.Context, id, userID int64) error {
	return c.updateTask(ctx, id, bson.M{"assignedUserId": userID})
}

// SetTaskCustomer links a customer onto a task
func (c *MongoDBClient) SetTaskCustomer(ctx context.Context, id, customerID int64) error {
	return c.updateTask(ctx, id, bson.M{"customerId": customerID})
}

// LinkWorkflowToTask links a workflow onto a task
func (c *MongoDBClient) LinkWorkflowToTask(ctx context.Context, id, workflowID int64) error {
	return c.updateTask(ctx, id, bson.M{"workflowId": workflowID})
}

// SetTaskQuote records the quote generated from a task
func (c *MongoDBClient) SetTaskQuote(ctx context.Context, id, quoteID int64) error {
	return c.updateTask(ctx, id, bson.M{"quoteId": quoteID})
}

func (c *MongoDBClient) updateTask(ctx context.Context, id int64, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := c.tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("task not found: %d", id)
	}
	return nil
}
