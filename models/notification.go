package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the lifecycle controller
const (
	NotificationItemClaimed     = "item_claimed"
	NotificationClaimApproved   = "claim_approved"
	NotificationClaimRejected   = "claim_rejected"
	NotificationClaimCompleted  = "claim_completed"
	NotificationDisputeResolved = "dispute_resolved"
	NotificationDisputeOpened   = "dispute_opened"
)

// Notification is an inbox entry for a user. It doubles as the outbound event
// handed to the notifier.
type Notification struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Title            string              `json:"title" bson:"title"`
	Message          string              `json:"message" bson:"message"`
	Type             string              `json:"type" bson:"type"`
	RelatedItemID    *primitive.ObjectID `json:"related_item_id,omitempty" bson:"related_item_id,omitempty"`
	RelatedClaimID   *primitive.ObjectID `json:"related_claim_id,omitempty" bson:"related_claim_id,omitempty"`
	RelatedDisputeID *primitive.ObjectID `json:"related_dispute_id,omitempty" bson:"related_dispute_id,omitempty"`
	Read             bool                `json:"read" bson:"read"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
}
