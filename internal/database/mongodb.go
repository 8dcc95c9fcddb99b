package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"awning-admin-api/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBClient wraps the MongoDB client and the application's collections
type MongoDBClient struct {
	client      *mongo.Client
	database    *mongo.Database
	customers   *mongo.Collection
	tasks       *mongo.Collection
	workflows   *mongo.Collection
	quotes      *mongo.Collection
	invoices    *mongo.Collection
	payments    *mongo.Collection
	siteVisits  *mongo.Collection
	followUps   *mongo.Collection
	audit       *mongo.Collection
	taskHistory *mongo.Collection
	priceList   *mongo.Collection
	counters    *mongo.Collection
}

// NewMongoDBClient creates a new MongoDB client
func NewMongoDBClient(cfg config.MongoDBConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI
	uri := cfg.URI
	if uri == "" {
		if cfg.Username != "" && cfg.Password != "" {
			// Use url.UserPassword to properly encode username and password
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
		}
	}

	// Log connection attempt (mask password)
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)
	}
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)

	c := &MongoDBClient{
		client:      client,
		database:    database,
		customers:   database.Collection("customers"),
		tasks:       database.Collection("tasks"),
		workflows:   database.Collection("workflows"),
		quotes:      database.Collection("quotes"),
		invoices:    database.Collection("invoices"),
		payments:    database.Collection("payments"),
		siteVisits:  database.Collection("site_visits"),
		followUps:   database.Collection("follow_ups"),
		audit:       database.Collection("audit_log"),
		taskHistory: database.Collection("task_history"),
		priceList:   database.Collection("price_list"),
		counters:    database.Collection("counters"),
	}

	c.ensureIndexes(ctx)

	return c, nil
}

// ensureIndexes creates the lookup indexes; existing indexes are fine
func (c *MongoDBClient) ensureIndexes(ctx context.Context) {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{c.customers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}}},
		{c.customers, mongo.IndexModel{Keys: bson.D{{Key: "companyNumber", Value: 1}}}},
		{c.workflows, mongo.IndexModel{Keys: bson.D{{Key: "customerId", Value: 1}}}},
		{c.tasks, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{c.quotes, mongo.IndexModel{Keys: bson.D{{Key: "workflowId", Value: 1}}}},
		{c.invoices, mongo.IndexModel{Keys: bson.D{{Key: "workflowId", Value: 1}}}},
		{c.audit, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{c.taskHistory, mongo.IndexModel{Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{c.priceList, mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}, {Key: "widthCm", Value: 1}, {Key: "projectionCm", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			// Index might already exist, that's okay
			fmt.Printf("Note: MongoDB index creation on %s: %v\n", idx.coll.Name(), err)
		}
	}
}

// Close closes the MongoDB client connection
func (c *MongoDBClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// NextSequence allocates the next numeric identifier for the named entity.
// Identifiers are monotonically increasing, so the highest id of a set is
// always the newest record.
func (c *MongoDBClient) NextSequence(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := c.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}

	return counter.Value, nil
}
