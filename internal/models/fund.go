package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fund is an investment vehicle gated by accreditation: Level is the minimum
// tier a viewer must hold to see it.
type Fund struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CompanyID primitive.ObjectID `json:"company_id" bson:"company_id"`
	ManagerID primitive.ObjectID `json:"manager_id" bson:"manager_id"`
	Level     Accreditation      `json:"level" bson:"level"`
	Overview  string             `json:"overview,omitempty" bson:"overview,omitempty"`
	Status    string             `json:"status" bson:"status"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	DeletedAt *time.Time `json:"-" bson:"deleted_at,omitempty"`
}
