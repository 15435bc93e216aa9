// internal/domain/models/rolerequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role request statuses.
const (
	RoleRequestPending  = "pending"
	RoleRequestApproved = "approved"
	RoleRequestRejected = "rejected"
)

// RoleRequest asks an administrator to assign an official role matching the
// persona the user picked during onboarding. Status changes happen in the
// admin approval workflow, not here.
type RoleRequest struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	UserEmail        string             `bson:"user_email,omitempty" json:"user_email,omitempty"`
	UserName         string             `bson:"user_name,omitempty" json:"user_name,omitempty"`
	RequestedPersona string             `bson:"requested_persona" json:"requested_persona"`
	Justification    string             `bson:"justification" json:"justification"`
	Status           string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
