package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPhoneRegion is used to parse contact phones written without a country code
const DefaultPhoneRegion = "US"

// ClaimRequest holds the structure for the claim_requests collection in mongo
type ClaimRequest struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ItemID       primitive.ObjectID  `json:"item_id" bson:"item_id"`
	ClaimerID    primitive.ObjectID  `json:"claimer_id" bson:"claimer_id"`
	ItemOwnerID  primitive.ObjectID  `json:"item_owner_id" bson:"item_owner_id"`
	Message      string              `json:"message" bson:"message"`
	ContactEmail string              `json:"contact_email,omitempty" bson:"contact_email,omitempty"`
	ContactPhone string              `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	Status       ClaimStatus         `json:"status" bson:"status"`
	AdminNotes   string              `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	DecidedBy    *primitive.ObjectID `json:"decided_by,omitempty" bson:"decided_by,omitempty"`
	DecidedAt    *time.Time          `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`

	// denormalized for display
	ClaimerName  string   `json:"claimer_name,omitempty" bson:"claimer_name,omitempty"`
	ClaimerEmail string   `json:"claimer_email,omitempty" bson:"claimer_email,omitempty"`
	ItemTitle    string   `json:"item_title,omitempty" bson:"item_title,omitempty"`
	ItemType     ItemType `json:"item_type,omitempty" bson:"item_type,omitempty"`
}

// CreateClaimRequest is the body of POST /claims
type CreateClaimRequest struct {
	ItemID       string `json:"item_id"`
	Message      string `json:"message"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// Normalize trims the request and rewrites the contact phone in E.164 when it parses
func (r *CreateClaimRequest) Normalize() {
	r.ItemID = strings.TrimSpace(r.ItemID)
	r.Message = strings.TrimSpace(r.Message)
	r.ContactEmail = NormalizeEmail(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)
	if r.ContactPhone != "" {
		if e164, err := NormalizePhone(r.ContactPhone); err == nil {
			r.ContactPhone = e164
		}
	}
}

// Validate checks the claim payload
func (r CreateClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.Required, is.MongoID),
		validation.Field(&r.Message, validation.Required, validation.Length(10, 1000)),
		validation.Field(&r.ContactEmail, is.Email),
		validation.Field(&r.ContactPhone, validation.By(validPhone)),
	)
}

// DecideClaimRequest is the body of PUT /admin/claims/{id}
type DecideClaimRequest struct {
	Status     ClaimStatus `json:"status"`
	AdminNotes string      `json:"admin_notes"`
}

// Validate checks the decision payload
func (r DecideClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(ClaimStatusApproved, ClaimStatusRejected, ClaimStatusCompleted)),
		validation.Field(&r.AdminNotes, validation.Length(0, 1000)),
	)
}

// NormalizePhone parses a phone number and formats it as E.164
func NormalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("not a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validPhone(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := NormalizePhone(s); err != nil {
		return errors.New("must be a valid phone number")
	}
	return nil
}
