package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content types recorded in the admin action ledger
const (
	ContentTypeItem    = "item"
	ContentTypeItems   = "items"
	ContentTypeClaim   = "claim"
	ContentTypeUser    = "user"
	ContentTypeDispute = "dispute"
)

// AdminAction is an append-only audit record of an admin (or system) action
type AdminAction struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AdminID     primitive.ObjectID `json:"admin_id" bson:"admin_id"`
	Action      string             `json:"action" bson:"action"`
	ContentType string             `json:"content_type" bson:"content_type"`
	ContentID   string             `json:"content_id" bson:"content_id"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// Dispute is an escalation record about an item and optionally one of its claims
type Dispute struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ItemID       primitive.ObjectID  `json:"item_id" bson:"item_id"`
	ClaimID      *primitive.ObjectID `json:"claim_id,omitempty" bson:"claim_id,omitempty"`
	OwnerID      primitive.ObjectID  `json:"owner_id" bson:"owner_id"`
	RaisedBy     primitive.ObjectID  `json:"raised_by" bson:"raised_by"`
	Reason       string              `json:"reason" bson:"reason"`
	Priority     string              `json:"priority" bson:"priority"`
	Status       DisputeStatus       `json:"status" bson:"status"`
	AdminNotes   string              `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	ResolvedBy   *primitive.ObjectID `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	LastActivity time.Time           `json:"last_activity" bson:"last_activity"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	ItemTitle    string              `json:"item_title,omitempty" bson:"item_title,omitempty"`
}

// CreateDisputeRequest is the body of POST /disputes
type CreateDisputeRequest struct {
	ItemID   string `json:"item_id"`
	ClaimID  string `json:"claim_id"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// Normalize trims the request and defaults the priority
func (r *CreateDisputeRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Priority == "" {
		r.Priority = string(UrgencyMedium)
	}
}

// Validate checks the dispute payload
func (r CreateDisputeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.Required, is.MongoID),
		validation.Field(&r.ClaimID, is.MongoID),
		validation.Field(&r.Reason, validation.Required, validation.Length(10, 2000)),
		validation.Field(&r.Priority, validation.In("low", "medium", "high")),
	)
}

// UpdateDisputeRequest is the body of PUT /admin/disputes/{id}
type UpdateDisputeRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

// Validate checks the dispute action
func (r UpdateDisputeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.Required, validation.In("investigate", "resolve", "dismiss", "reopen")),
		validation.Field(&r.Note, validation.Length(0, 1000)),
	)
}

// ModerateItemRequest is the body of POST /admin/items/{id}/moderate
type ModerateItemRequest struct {
	Action ModerationAction `json:"action"`
	Note   string           `json:"note"`
}

// Validate checks the moderation action
func (r ModerateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.Required, validation.In(moderationRules()...)),
		validation.Field(&r.Note, validation.Length(0, 1000)),
	)
}

// ItemStatusRequest is the body of PUT /admin/items/{id}/status
type ItemStatusRequest struct {
	Status ItemStatus `json:"status"`
}

// BulkActionRequest is the body of POST /admin/bulk-action
type BulkActionRequest struct {
	ItemIDs []string         `json:"item_ids"`
	Action  ModerationAction `json:"action"`
	Note    string           `json:"note"`
}

// Validate checks the bulk payload; individual ids are checked per item
func (r BulkActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemIDs, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Action, validation.Required, validation.In(moderationRules()...)),
		validation.Field(&r.Note, validation.Length(0, 1000)),
	)
}

// BulkActionResult is the per-item outcome of a bulk action
type BulkActionResult struct {
	ItemID  string `json:"item_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkActionResponse summarises a bulk action
type BulkActionResponse struct {
	Success    bool               `json:"success"`
	Processed  int                `json:"processed"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Results    []BulkActionResult `json:"results"`
}

// FlaggedActionRequest is the body of POST /admin/flagged/{id}/action
type FlaggedActionRequest struct {
	Action      string `json:"action"`
	ContentType string `json:"content_type"`
	Note        string `json:"note"`
}

// Validate checks the flagged content action
func (r FlaggedActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Action, validation.Required, validation.In("approve", "remove", "escalate")),
		validation.Field(&r.ContentType, validation.Required, validation.In(ContentTypeItem)),
		validation.Field(&r.Note, validation.Length(0, 1000)),
	)
}

// FlaggedContent is one entry of the admin flagged content queue
type FlaggedContent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	User           string    `json:"user"`
	Email          string    `json:"email"`
	Reason         string    `json:"reason"`
	FlaggedBy      string    `json:"flagged_by"`
	CreatedAt      time.Time `json:"created_at"`
	Severity       string    `json:"severity"`
	ActionRequired bool      `json:"action_required"`
	ReportCount    int       `json:"report_count"`
}

func moderationRules() []interface{} {
	var out []interface{}
	for _, a := range ValidModerationActions() {
		out = append(out, a)
	}
	return out
}
