package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Facility struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Classification string             `bson:"classification" json:"classification"`
	Province       string             `bson:"province" json:"province"`
	District       string             `bson:"district" json:"district"`
	Town           string             `bson:"town" json:"town"`
	Status         string             `bson:"status" json:"status"`
	Phone          string             `bson:"phone" json:"phone"`
	Email          string             `bson:"email" json:"email"`
	OperatingHours string             `bson:"operatingHours" json:"operatingHours"`
	Location       GeoPoint           `bson:"location" json:"location"`

	// Distance is only populated by proximity queries.
	Distance *float64 `bson:"distance,omitempty" json:"distance,omitempty"`
}
