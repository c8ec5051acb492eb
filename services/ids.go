package services

import (
	"github.com/dcode-github/capetown_discovery/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		verr := &models.ValidationError{}
		verr.Add("id", "must be a 24 character hex identifier")
		return primitive.NilObjectID, verr
	}
	return oid, nil
}
