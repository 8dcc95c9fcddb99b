package models

import "time"

// Customer represents a customer record
type Customer struct {
	ID            int64     `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CompanyNumber string    `bson:"companyNumber,omitempty" json:"companyNumber,omitempty"`
	AddressLine1  string    `bson:"addressLine1,omitempty" json:"addressLine1,omitempty"`
	AddressLine2  string    `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City          string    `bson:"city,omitempty" json:"city,omitempty"`
	Postcode      string    `bson:"postcode,omitempty" json:"postcode,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PriceEntry is a price-list row keyed by product and awning dimensions (cm)
type PriceEntry struct {
	ProductID    int64   `bson:"productId" json:"productId"`
	ProductName  string  `bson:"productName" json:"productName"`
	WidthCm      int     `bson:"widthCm" json:"widthCm"`
	ProjectionCm int     `bson:"projectionCm" json:"projectionCm"`
	UnitPrice    float64 `bson:"unitPrice" json:"unitPrice"`
}
