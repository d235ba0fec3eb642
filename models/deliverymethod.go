package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeliveryMethod struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Subtitle       string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Price          float64            `bson:"price" json:"price"`
	ValidationDesc string             `bson:"validationDesc,omitempty" json:"validationDesc,omitempty"`
	IsEnabled      bool               `bson:"isEnabled" json:"isEnabled"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	UpdatedBy      primitive.ObjectID `bson:"updatedBy" json:"updatedBy"`
}
