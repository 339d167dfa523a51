package lifecycle

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// CreateItem posts a new lost or found item owned by actor
func (c *Controller) CreateItem(ctx context.Context, actor *models.Profile, req models.CreateItemRequest) (*models.Item, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	item := req.NewItem(actor.ID, c.now())
	id, err := c.Items.InsertOne(ctx, item)
	if err != nil {
		return nil, internalError("failed to create item", err)
	}
	item.ID = id
	item.OwnerName = actor.FullName
	item.OwnerEmail = actor.Email
	return &item, nil
}

// GetItem returns one item. Removed items are not visible.
func (c *Controller) GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	item, err := c.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == models.ItemStatusRemoved {
		return nil, newError(KindNotFound, "item not found")
	}
	items := []models.Item{*item}
	c.attachOwners(ctx, items)
	return &items[0], nil
}

// ListItems returns a page of items for the public browse view. Without a status
// filter only active items are listed.
func (c *Controller) ListItems(ctx context.Context, q models.ItemQuery) (*models.ItemListResponse, error) {
	if q.Status == "" {
		q.Status = models.ItemStatusActive
	}
	if q.Status == models.ItemStatusRemoved {
		return nil, newError(KindValidation, "status: removed items cannot be listed")
	}
	q.FlaggedOnly = false
	q.Page, q.PerPage = Paging(q.Page, q.PerPage, DefaultPerPage, MaxPerPage)
	return c.listItems(ctx, q)
}

// AdminListItems returns a page of items in any status
func (c *Controller) AdminListItems(ctx context.Context, actor *models.Profile, q models.ItemQuery) (*models.ItemListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	q.Page, q.PerPage = Paging(q.Page, q.PerPage, DefaultAdminPerPage, MaxAdminPerPage)
	return c.listItems(ctx, q)
}

func (c *Controller) listItems(ctx context.Context, q models.ItemQuery) (*models.ItemListResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, validationError(err)
	}
	filter := ItemFilter(q)
	total, err := c.Items.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count items", err)
	}
	items, err := c.Items.Find(ctx, filter, databases.Paginate(q.Page, q.PerPage))
	if err != nil {
		return nil, internalError("failed to list items", err)
	}
	c.attachOwners(ctx, items)
	return &models.ItemListResponse{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
		HasNext: int64(q.Page)*int64(q.PerPage) < total,
		HasPrev: q.Page > 1,
	}, nil
}

// ItemFilter builds the mongo filter for an item query
func ItemFilter(q models.ItemQuery) bson.M {
	filter := bson.M{}
	if q.Type != "" {
		filter["type"] = q.Type
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Urgency != "" {
		filter["urgency"] = q.Urgency
	}
	if q.Location != "" {
		filter["location"] = containsInsensitive(q.Location)
	}
	if q.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": containsInsensitive(q.Search)},
			bson.M{"description": containsInsensitive(q.Search)},
		}
	}
	if q.HasReward != nil {
		if *q.HasReward {
			filter["reward"] = bson.M{"$gt": 0}
		} else {
			filter["reward"] = bson.M{"$lte": 0}
		}
	}
	if q.FlaggedOnly {
		filter["flagged"] = true
	}
	return filter
}

func containsInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// UpdateItem applies a partial update. Owners may edit descriptive fields of
// their active or claimed items; admins may edit any item and also change its
// status and moderation fields.
func (c *Controller) UpdateItem(ctx context.Context, actor *models.Profile, id primitive.ObjectID, patch models.UpdateItemRequest) (*models.Item, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	item, err := c.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != actor.ID && !actor.IsAdmin {
		return nil, newError(KindAuthorization, "you can only update your own items")
	}
	if patch.HasAdminFields() && !actor.IsAdmin {
		return nil, newError(KindAuthorization, "only admins can change status or moderation fields")
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, validationError(err)
	}
	if patch.IsEmpty() {
		return nil, newError(KindValidation, "no fields to update")
	}
	if !actor.IsAdmin && item.Status != models.ItemStatusActive && item.Status != models.ItemStatusClaimed {
		return nil, newError(KindState, "a %s item can no longer be edited", item.Status)
	}

	set := patch.SetFields()
	set["updated_at"] = c.now()

	var updated *models.Item
	if patch.Status != nil && *patch.Status != item.Status {
		updated, err = c.changeItemStatus(ctx, actor, item, *patch.Status, set)
	} else {
		updated, err = c.Items.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": item.Status}, bson.M{"$set": set})
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = newError(KindState, "item changed while updating, try again")
		} else if err != nil {
			err = internalError("failed to update item", err)
		}
	}
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin && item.UserID != actor.ID {
		c.record(ctx, actor.ID, "update_item", models.ContentTypeItem, id.Hex(), string(updated.Status))
	}
	items := []models.Item{*updated}
	c.attachOwners(ctx, items)
	return &items[0], nil
}

// SetItemStatus is the admin shortcut for a status-only update
func (c *Controller) SetItemStatus(ctx context.Context, actor *models.Profile, id primitive.ObjectID, status models.ItemStatus) (*models.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, newError(KindValidation, "status: must be a valid value")
	}
	return c.UpdateItem(ctx, actor, id, models.UpdateItemRequest{Status: &status})
}

// changeItemStatus moves an item along its state machine. Leaving claimed also
// settles the approved claim: resolving completes it, re-activating reverses it.
func (c *Controller) changeItemStatus(ctx context.Context, actor *models.Profile, item *models.Item, to models.ItemStatus, set bson.M) (*models.Item, error) {
	if to == models.ItemStatusClaimed {
		return nil, newError(KindState, "items become claimed only through claim approval")
	}
	if !CanTransitionItem(item.Status, to) {
		return nil, newError(KindState, "cannot move item from %s to %s", item.Status, to)
	}

	if item.Status == models.ItemStatusClaimed {
		claim, err := c.Claims.FindOne(ctx, bson.M{"item_id": item.ID, "status": models.ClaimStatusApproved})
		switch {
		case err == nil:
			claimTo := models.ClaimStatusRejected
			if to == models.ItemStatusResolved {
				claimTo = models.ClaimStatusCompleted
			}
			updatedClaim, updatedItem, err := c.moveClaim(ctx, actor, claim, claimTo, "", set)
			if err != nil {
				return nil, err
			}
			c.notifyClaimDecision(updatedClaim)
			return updatedItem, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, internalError("failed to load approved claim", err)
		}
	}

	set["status"] = to
	updated, err := c.Items.FindOneAndUpdate(ctx, bson.M{"_id": item.ID, "status": item.Status}, bson.M{"$set": set})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, newError(KindState, "item changed while updating, try again")
	}
	if err != nil {
		return nil, internalError("failed to update item", err)
	}
	return updated, nil
}
