package database

import (
	"context"
	"fmt"
	"time"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateWorkflow inserts a new workflow with only the initial-enquiry stage
// enabled
func (c *MongoDBClient) CreateWorkflow(ctx context.Context, workflow models.Workflow) (*models.Workflow, error) {
	id, err := c.NextSequence(ctx, "workflows")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	workflow.ID = id
	workflow.InitialEnquiry = true
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if _, err := c.workflows.InsertOne(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to insert workflow: %w", err)
	}

	return &workflow, nil
}

// GetWorkflowByID retrieves a workflow, returning nil when not found
func (c *MongoDBClient) GetWorkflowByID(ctx context.Context, id int64) (*models.Workflow, error) {
	var workflow models.Workflow
	err := c.workflows.FindOne(ctx, bson.M{"_id": id}).Decode(&workflow)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query workflow %d: %w", id, err)
	}
	return &workflow, nil
}

// GetWorkflowsForCustomer returns all workflows belonging to a customer
func (c *MongoDBClient) GetWorkflowsForCustomer(ctx context.Context, customerID int64) ([]models.Workflow, error) {
	cursor, err := c.workflows.Find(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows for customer %d: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var workflows []models.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, fmt.Errorf("failed to decode workflows: %w", err)
	}

	return workflows, nil
}

// UpdateWorkflowStages applies stage-flag updates to a workflow
func (c *MongoDBClient) UpdateWorkflowStages(ctx context.Context, id int64, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := c.workflows.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update workflow %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("workflow not found: %d", id)
	}
	return nil
}

// CreateSiteVisit books a site visit against a workflow
func (c *MongoDBClient) CreateSiteVisit(ctx context.Context, visit models.SiteVisit) (*models.SiteVisit, error) {
	id, err := c.NextSequence(ctx, "site_visits")
	if err != nil {
		return nil, err
	}

	visit.ID = id
	visit.CreatedAt = time.Now()

	if _, err := c.siteVisits.InsertOne(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to insert site visit: %w", err)
	}

	return &visit, nil
}

// GetPrice looks up the price-list entry for a product at the given awning
// dimensions. Returns nil when no entry exists.
func (c *MongoDBClient) GetPrice(ctx context.Context, productID int64, widthCm, projectionCm int) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	err := c.priceList.FindOne(ctx, bson.M{
		"productId":    productID,
		"widthCm":      widthCm,
		"projectionCm": projectionCm,
	}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query price list: %w", err)
	}
	return &entry, nil
}

// UpsertPrice writes a price-list entry, replacing any existing one for the
// same product and dimensions
func (c *MongoDBClient) UpsertPrice(ctx context.Context, entry models.PriceEntry) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"productId":    entry.ProductID,
		"widthCm":      entry.WidthCm,
		"projectionCm": entry.ProjectionCm,
	}
	_, err := c.priceList.UpdateOne(ctx, filter, bson.M{"$set": entry}, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert price entry: %w", err)
	}
	return nil
}

// FindStaleEnquiryWorkflows returns workflows still in the initial-enquiry
// stage (no later stage enabled) that have not been touched since the cutoff
func (c *MongoDBClient) FindStaleEnquiryWorkflows(ctx context.Context, cutoff time.Time) ([]models.Workflow, error) {
	filter := bson.M{
		"initialEnquiry": true,
		"quote":          false,
		"showroomInvite": false,
		"siteVisit":      false,
		"invoice":        false,
		"updatedAt":      bson.M{"$lt": cutoff},
	}

	cursor, err := c.workflows.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale enquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var workflows []models.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, fmt.Errorf("failed to decode stale enquiries: %w", err)
	}

	return workflows, nil
}

// UpsertFollowUp writes a follow-up for a workflow, keeping at most one open
// follow-up per workflow
func (c *MongoDBClient) UpsertFollowUp(ctx context.Context, followUp models.FollowUp) error {
	existing := c.followUps.FindOne(ctx, bson.M{"workflowId": followUp.WorkflowID, "done": false})
	if existing.Err() == nil {
		return nil // open follow-up already exists
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to check existing follow-up: %w", existing.Err())
	}

	id, err := c.NextSequence(ctx, "follow_ups")
	if err != nil {
		return err
	}
	followUp.ID = id

	if _, err := c.followUps.InsertOne(ctx, followUp); err != nil {
		return fmt.Errorf("failed to insert follow-up: %w", err)
	}
	return nil
}

// ListOpenFollowUps returns all follow-ups not yet marked done, newest first
func (c *MongoDBClient) ListOpenFollowUps(ctx context.Context) ([]models.FollowUp, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	cursor, err := c.followUps.Find(ctx, bson.M{"done": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer cursor.Close(ctx)

	var followUps []models.FollowUp
	if err := cursor.All(ctx, &followUps); err != nil {
		return nil, fmt.Errorf("failed to decode follow-ups: %w", err)
	}

	return followUps, nil
}

// MarkFollowUpDone marks a follow-up as handled
func (c *MongoDBClient) MarkFollowUpDone(ctx context.Context, id int64) error {
	result, err := c.followUps.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"done": true}})
	if err != nil {
		return fmt.Errorf("failed to update follow-up %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("follow-up not found: %d", id)
	}
	return nil
}
