package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	contactEmail = "email"
	contactPhone = "phone"
	maxImages    = 10
	dateLayout   = "2006-01-02"
)

// Item holds the structure for the items collection in mongo
type Item struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID            primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Title             string              `json:"title" bson:"title"`
	Description       string              `json:"description" bson:"description"`
	Category          ItemCategory        `json:"category" bson:"category"`
	Location          string              `json:"location" bson:"location"`
	Images            []string            `json:"images" bson:"images"`
	Reward            int                 `json:"reward" bson:"reward"`
	Urgency           Urgency             `json:"urgency" bson:"urgency"`
	Type              ItemType            `json:"type" bson:"type"`
	DateLost          string              `json:"date_lost,omitempty" bson:"date_lost,omitempty"`
	TimeLost          string              `json:"time_lost,omitempty" bson:"time_lost,omitempty"`
	ContactPreference string              `json:"contact_preference" bson:"contact_preference"`
	Status            ItemStatus          `json:"status" bson:"status"`
	Flagged           bool                `json:"flagged" bson:"flagged"`
	FlagReason        string              `json:"flag_reason,omitempty" bson:"flag_reason,omitempty"`
	ModerationStatus  string              `json:"moderation_status,omitempty" bson:"moderation_status,omitempty"`
	ModerationNotes   string              `json:"moderation_notes,omitempty" bson:"moderation_notes,omitempty"`
	ModeratedBy       *primitive.ObjectID `json:"moderated_by,omitempty" bson:"moderated_by,omitempty"`
	ModeratedAt       *time.Time          `json:"moderated_at,omitempty" bson:"moderated_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`

	// computed from the owner's profile, never stored
	OwnerName  string `json:"owner_name,omitempty" bson:"-"`
	OwnerEmail string `json:"owner_email,omitempty" bson:"-"`
}

// CreateItemRequest is the body of POST /items
type CreateItemRequest struct {
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Category          ItemCategory `json:"category"`
	Location          string       `json:"location"`
	Images            []string     `json:"images"`
	Reward            int          `json:"reward"`
	Urgency           Urgency      `json:"urgency"`
	Type              ItemType     `json:"type"`
	DateLost          string       `json:"date_lost"`
	TimeLost          string       `json:"time_lost"`
	ContactPreference string       `json:"contact_preference"`
}

// Normalize trims text fields and fills in defaults
func (r *CreateItemRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = ItemCategory(strings.ToLower(string(r.Category)))
	if r.Urgency == "" {
		r.Urgency = UrgencyMedium
	}
	if r.ContactPreference == "" {
		r.ContactPreference = contactEmail
	}
	if r.Images == nil {
		r.Images = []string{}
	}
}

// Validate checks lengths and enums of a new item
func (r CreateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Description, validation.Required, validation.Length(10, 2000)),
		validation.Field(&r.Category, validation.Required, validation.In(categoryRules()...)),
		validation.Field(&r.Location, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Images, validation.Length(0, maxImages)),
		validation.Field(&r.Reward, validation.Min(0)),
		validation.Field(&r.Urgency, validation.In(urgencyRules()...)),
		validation.Field(&r.Type, validation.Required, validation.In(ItemTypeLost, ItemTypeFound)),
		validation.Field(&r.DateLost, validation.Date(dateLayout)),
		validation.Field(&r.TimeLost, validation.Length(0, 20)),
		validation.Field(&r.ContactPreference, validation.In(contactEmail, contactPhone)),
	)
}

// NewItem builds the stored item for an owner
func (r CreateItemRequest) NewItem(owner primitive.ObjectID, now time.Time) Item {
	return Item{
		UserID:            owner,
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Location:          r.Location,
		Images:            r.Images,
		Reward:            r.Reward,
		Urgency:           r.Urgency,
		Type:              r.Type,
		DateLost:          r.DateLost,
		TimeLost:          r.TimeLost,
		ContactPreference: r.ContactPreference,
		Status:            ItemStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateItemRequest is the body of PUT /items/{id}. Nil fields are left untouched.
type UpdateItemRequest struct {
	Title             *string       `json:"title"`
	Description       *string       `json:"description"`
	Category          *ItemCategory `json:"category"`
	Location          *string       `json:"location"`
	Images            *[]string     `json:"images"`
	Reward            *int          `json:"reward"`
	Urgency           *Urgency      `json:"urgency"`
	DateLost          *string       `json:"date_lost"`
	TimeLost          *string       `json:"time_lost"`
	ContactPreference *string       `json:"contact_preference"`

	// admin only
	Status     *ItemStatus `json:"status"`
	Flagged    *bool       `json:"flagged"`
	FlagReason *string     `json:"flag_reason"`
}

// Normalize trims the text fields present in the patch the same way a new item is trimmed
func (r *UpdateItemRequest) Normalize() {
	r.Title = trimmed(r.Title)
	r.Description = trimmed(r.Description)
	r.Location = trimmed(r.Location)
	r.DateLost = trimmed(r.DateLost)
	r.TimeLost = trimmed(r.TimeLost)
	r.ContactPreference = trimmed(r.ContactPreference)
	r.FlagReason = trimmed(r.FlagReason)
	if r.Category != nil {
		c := ItemCategory(strings.ToLower(strings.TrimSpace(string(*r.Category))))
		r.Category = &c
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// Validate checks the fields present in the patch
func (r UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(3, 200)),
		validation.Field(&r.Description, validation.NilOrNotEmpty, validation.Length(10, 2000)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.In(categoryRules()...)),
		validation.Field(&r.Location, validation.NilOrNotEmpty, validation.Length(2, 100)),
		validation.Field(&r.Reward, validation.Min(0)),
		validation.Field(&r.Urgency, validation.NilOrNotEmpty, validation.In(urgencyRules()...)),
		validation.Field(&r.DateLost, validation.Date(dateLayout)),
		validation.Field(&r.TimeLost, validation.Length(0, 20)),
		validation.Field(&r.ContactPreference, validation.NilOrNotEmpty, validation.In(contactEmail, contactPhone)),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(statusRules()...)),
		validation.Field(&r.FlagReason, validation.Length(0, 500)),
		validation.Field(&r.Images, validation.By(func(v interface{}) error {
			if r.Images != nil && len(*r.Images) > maxImages {
				return errors.New("must contain at most 10 images")
			}
			return nil
		})),
	)
}

// HasAdminFields reports whether the patch touches fields only admins may set
func (r UpdateItemRequest) HasAdminFields() bool {
	return r.Status != nil || r.Flagged != nil || r.FlagReason != nil
}

// IsEmpty reports whether the patch carries no field at all
func (r UpdateItemRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Category == nil && r.Location == nil &&
		r.Images == nil && r.Reward == nil && r.Urgency == nil && r.DateLost == nil &&
		r.TimeLost == nil && r.ContactPreference == nil && !r.HasAdminFields()
}

// SetFields returns the $set document for the descriptive and moderation
// fields of the patch. Status is handled by the caller.
func (r UpdateItemRequest) SetFields() bson.M {
	set := bson.M{}
	if r.Title != nil {
		set["title"] = *r.Title
	}
	if r.Description != nil {
		set["description"] = *r.Description
	}
	if r.Category != nil {
		set["category"] = *r.Category
	}
	if r.Location != nil {
		set["location"] = *r.Location
	}
	if r.Images != nil {
		set["images"] = *r.Images
	}
	if r.Reward != nil {
		set["reward"] = *r.Reward
	}
	if r.Urgency != nil {
		set["urgency"] = *r.Urgency
	}
	if r.DateLost != nil {
		set["date_lost"] = *r.DateLost
	}
	if r.TimeLost != nil {
		set["time_lost"] = *r.TimeLost
	}
	if r.ContactPreference != nil {
		set["contact_preference"] = *r.ContactPreference
	}
	if r.Flagged != nil {
		set["flagged"] = *r.Flagged
	}
	if r.FlagReason != nil {
		set["flag_reason"] = *r.FlagReason
	}
	return set
}

// ItemQuery holds the filters of GET /items
type ItemQuery struct {
	Type        ItemType
	Category    ItemCategory
	Status      ItemStatus
	Location    string
	Urgency     Urgency
	Search      string
	HasReward   *bool
	FlaggedOnly bool
	Page        int
	PerPage     int
}

// Validate checks the enum filters
func (q ItemQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Type, validation.In(ItemTypeLost, ItemTypeFound)),
		validation.Field(&q.Category, validation.In(categoryRules()...)),
		validation.Field(&q.Status, validation.In(statusRules()...)),
		validation.Field(&q.Urgency, validation.In(urgencyRules()...)),
		validation.Field(&q.Search, validation.Length(0, 200)),
		validation.Field(&q.Location, validation.Length(0, 100)),
	)
}

func categoryRules() []interface{} {
	var out []interface{}
	for _, c := range ValidItemCategories() {
		out = append(out, c)
	}
	return out
}

func urgencyRules() []interface{} {
	var out []interface{}
	for _, u := range ValidUrgencies() {
		out = append(out, u)
	}
	return out
}

func statusRules() []interface{} {
	var out []interface{}
	for _, s := range ValidItemStatuses() {
		out = append(out, s)
	}
	return out
}
