package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Rental struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Location     string             `bson:"location" json:"location"`
	Price        float64            `bson:"price" json:"price"`
	Bedrooms     int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms    int                `bson:"bathrooms" json:"bathrooms"`
	PropertyType string             `bson:"propertyType" json:"propertyType"`
	Furnished    string             `bson:"furnished" json:"furnished"`
	Category     string             `bson:"category" json:"category"`
	Features     []string           `bson:"features" json:"features"`
	Available    bool               `bson:"available" json:"available"`
	Views        int                `bson:"views" json:"views"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Closed enum sets accepted by the rental filters.
var (
	RentalCategories = []string{"budget", "mid-range", "luxury"}
	FurnishingTypes  = []string{"furnished", "unfurnished", "semi-furnished"}
)
