package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Pagination limits for public and admin listings
const (
	DefaultPerPage      = 12
	MaxPerPage          = 50
	DefaultAdminPerPage = 20
	MaxAdminPerPage     = 100
	// pages past this are always empty and are served as the last page
	MaxPage             = 1_000_000
)

// Notifier receives outbound notification events. Emit must not block; delivery is
// best-effort, at most once and unordered.
type Notifier interface {
	Emit(n models.Notification)
}

// Controller enforces the item and claim lifecycles and who may drive them
type Controller struct {
	Profiles      databases.ProfileDatabase
	Items         databases.ItemDatabase
	Claims        databases.ClaimDatabase
	Actions       databases.AdminActionDatabase
	Disputes      databases.DisputeDatabase
	Notifications databases.NotificationDatabase
	Notifier      Notifier

	// AllowedEmailDomain restricts registration to one email domain when set
	AllowedEmailDomain string

	Now func() time.Time
}

// NewController wires a controller to the collections of db
func NewController(db databases.DatabaseHelper, notifier Notifier) *Controller {
	return &Controller{
		Profiles:      databases.NewProfileDatabase(db),
		Items:         databases.NewItemDatabase(db),
		Claims:        databases.NewClaimDatabase(db),
		Actions:       databases.NewAdminActionDatabase(db),
		Disputes:      databases.NewDisputeDatabase(db),
		Notifications: databases.NewNotificationDatabase(db),
		Notifier:      notifier,
		Now:           time.Now,
	}
}

// ParseID parses a hex object id, reporting a validation error naming field
func ParseID(hex, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, newError(KindValidation, "%s: must be a valid id", field)
	}
	return id, nil
}

// Paging clamps a requested page to the given default and maximum page size
func Paging(page, perPage, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = def
	}
	if perPage > max {
		perPage = max
	}
	return page, perPage
}

func (c *Controller) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

func (c *Controller) emit(n models.Notification) {
	if c.Notifier == nil {
		return
	}
	n.CreatedAt = c.now()
	c.Notifier.Emit(n)
}

// record appends to the admin action ledger. The state change it describes has
// already happened, so a failed write is logged rather than returned.
func (c *Controller) record(ctx context.Context, adminID primitive.ObjectID, action, contentType, contentID, notes string) {
	_, err := c.Actions.InsertOne(ctx, models.AdminAction{
		AdminID:     adminID,
		Action:      action,
		ContentType: contentType,
		ContentID:   contentID,
		Notes:       notes,
		CreatedAt:   c.now(),
	})
	if err != nil {
		zap.S().With(err).Errorw("failed to record admin action",
			"action", action, "content_type", contentType, "content_id", contentID)
	}
}

func requireActive(actor *models.Profile) error {
	if actor == nil {
		return newError(KindAuthentication, "authentication required")
	}
	if actor.IsBanned {
		return newError(KindAuthorization, "your account has been banned")
	}
	return nil
}

func requireAdmin(actor *models.Profile) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return newError(KindAuthorization, "admin access required")
	}
	return nil
}

func loadError(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return newError(KindNotFound, "%s not found", what)
	}
	return internalError(fmt.Sprintf("failed to load %s", what), err)
}

func (c *Controller) loadItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	item, err := c.Items.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, loadError(err, "item")
	}
	return item, nil
}

func (c *Controller) loadClaim(ctx context.Context, id primitive.ObjectID) (*models.ClaimRequest, error) {
	claim, err := c.Claims.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, loadError(err, "claim")
	}
	return claim, nil
}

// attachOwners fills the display-only owner fields of items. Lookup failures
// leave the fields empty.
func (c *Controller) attachOwners(ctx context.Context, items []models.Item) {
	if len(items) == 0 {
		return
	}
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, it := range items {
		if !seen[it.UserID] {
			seen[it.UserID] = true
			ids = append(ids, it.UserID)
		}
	}
	owners, err := c.Profiles.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		zap.S().With(err).Warn("failed to load item owners")
		return
	}
	byID := make(map[primitive.ObjectID]models.Profile, len(owners))
	for _, p := range owners {
		byID[p.ID] = p
	}
	for i := range items {
		if p, ok := byID[items[i].UserID]; ok {
			items[i].OwnerName = p.FullName
			items[i].OwnerEmail = p.Email
		}
	}
}
