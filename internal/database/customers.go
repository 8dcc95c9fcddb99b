package database

import (
	"context"
	"fmt"
	"time"

	"awning-admin-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateCustomer inserts a new customer and returns it with its allocated id
func (c *MongoDBClient) CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	id, err := c.NextSequence(ctx, "customers")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if _, err := c.customers.InsertOne(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}

	return &customer, nil
}

// GetCustomerByID retrieves a customer, returning nil when not found
func (c *MongoDBClient) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := c.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query customer %d: %w", id, err)
	}
	return &customer, nil
}

// UpdateCustomer applies the given field updates to a customer
func (c *MongoDBClient) UpdateCustomer(ctx context.Context, id int64, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	result, err := c.customers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("customer not found: %d", id)
	}
	return nil
}

// DeleteCustomer removes a customer record
func (c *MongoDBClient) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := c.customers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("customer not found: %d", id)
	}
	return nil
}

// FindCustomer looks up an existing customer by email or company number.
// Returns nil when no match exists, which tells the caller to create a new
// record instead of linking.
func (c *MongoDBClient) FindCustomer(ctx context.Context, email, companyNumber string) (*models.Customer, error) {
	var clauses []bson.M
	if email != "" {
		clauses = append(clauses, bson.M{"email": email})
	}
	if companyNumber != "" {
		clauses = append(clauses, bson.M{"companyNumber": companyNumber})
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("email or companyNumber is required")
	}

	var customer models.Customer
	err := c.customers.FindOne(ctx, bson.M{"$or": clauses}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return &customer, nil
}
