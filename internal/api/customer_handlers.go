package api

import (
	"context"
	"net/http"
	"time"

	"awning-admin-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// CreateCustomerHandler handles POST /api/customers
func (h *Handlers) CreateCustomerHandler(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.CreateCustomer(ctx, models.Customer{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		CompanyNumber: req.CompanyNumber,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		Postcode:      req.Postcode,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create customer"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("customer", customer.ID, "create", userID, userName, customer.Name)

	c.JSON(http.StatusCreated, customer)
}

// GetCustomerHandler handles GET /api/customers/:id
func (h *Handlers) GetCustomerHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.GetCustomerByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// LookupCustomerHandler handles GET /api/customers/lookup. The task detail
// view calls this to decide between "link to existing" and "create new".
func (h *Handlers) LookupCustomerHandler(c *gin.Context) {
	var query models.CustomerLookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Email == "" && query.CompanyNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or companyNumber is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.FindCustomer(ctx, query.Email, query.CompanyNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"found": true, "customer": customer})
}

// UpdateCustomerHandler handles PUT /api/customers/:id
func (h *Handlers) UpdateCustomerHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.GetCustomerByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	fields := bson.M{
		"name":          req.Name,
		"email":         req.Email,
		"phone":         req.Phone,
		"companyNumber": req.CompanyNumber,
		"addressLine1":  req.AddressLine1,
		"addressLine2":  req.AddressLine2,
		"city":          req.City,
		"postcode":      req.Postcode,
	}
	if err := h.db.UpdateCustomer(ctx, id, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update customer"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("customer", id, "update", userID, userName, req.Name)

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteCustomerHandler handles DELETE /api/customers/:id
func (h *Handlers) DeleteCustomerHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	customer, err := h.db.GetCustomerByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer"})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	if err := h.db.DeleteCustomer(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete customer"})
		return
	}

	userID, userName := currentUser(c)
	h.audit.RecordEntityAction("customer", id, "delete", userID, userName, customer.Name)

	c.JSON(http.StatusOK, gin.H{"id": id})
}
