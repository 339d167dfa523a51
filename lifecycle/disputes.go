package lifecycle

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// OpenDispute escalates a disagreement about an item. Only the item owner, a
// claimant on the item or an admin may open one.
func (c *Controller) OpenDispute(ctx context.Context, actor *models.Profile, req models.CreateDisputeRequest) (*models.Dispute, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	itemID, err := ParseID(req.ItemID, "item_id")
	if err != nil {
		return nil, err
	}
	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var claimID *primitive.ObjectID
	involved := actor.IsAdmin || item.UserID == actor.ID
	if req.ClaimID != "" {
		id, err := ParseID(req.ClaimID, "claim_id")
		if err != nil {
			return nil, err
		}
		claim, err := c.loadClaim(ctx, id)
		if err != nil {
			return nil, err
		}
		if claim.ItemID != item.ID {
			return nil, newError(KindValidation, "claim_id: claim does not belong to this item")
		}
		claimID = &claim.ID
		involved = involved || claim.ClaimerID == actor.ID
	} else if !involved {
		n, err := c.Claims.CountDocuments(ctx, bson.M{"item_id": item.ID, "claimer_id": actor.ID})
		if err != nil {
			return nil, internalError("failed to check claims", err)
		}
		involved = n > 0
	}
	if !involved {
		return nil, newError(KindAuthorization, "only the item owner or a claimant can open a dispute")
	}

	return c.insertDispute(ctx, actor, item, claimID, req.Reason, req.Priority)
}

// escalate opens a high priority dispute for a flagged item on behalf of an admin
func (c *Controller) escalate(ctx context.Context, actor *models.Profile, itemID primitive.ObjectID, note string) (*models.Dispute, error) {
	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	reason := note
	if reason == "" {
		reason = "Escalated from flagged content: " + item.FlagReason
	}
	return c.insertDispute(ctx, actor, item, nil, reason, string(models.UrgencyHigh))
}

func (c *Controller) insertDispute(ctx context.Context, actor *models.Profile, item *models.Item, claimID *primitive.ObjectID, reason, priority string) (*models.Dispute, error) {
	now := c.now()
	dispute := models.Dispute{
		ItemID:       item.ID,
		ClaimID:      claimID,
		OwnerID:      item.UserID,
		RaisedBy:     actor.ID,
		Reason:       reason,
		Priority:     priority,
		Status:       models.DisputeStatusOpen,
		LastActivity: now,
		CreatedAt:    now,
		ItemTitle:    item.Title,
	}
	id, err := c.Disputes.InsertOne(ctx, dispute)
	if err != nil {
		return nil, internalError("failed to create dispute", err)
	}
	dispute.ID = id

	if item.UserID != actor.ID {
		c.emit(models.Notification{
			UserID:           item.UserID,
			Title:            "Dispute Opened",
			Message:          "A dispute has been opened regarding your item: " + item.Title,
			Type:             models.NotificationDisputeOpened,
			RelatedItemID:    &item.ID,
			RelatedDisputeID: &dispute.ID,
		})
	}
	return &dispute, nil
}

// ListDisputes returns disputes filtered by status and priority
func (c *Controller) ListDisputes(ctx context.Context, actor *models.Profile, status models.DisputeStatus, priority string, page, perPage int) (*models.DisputeListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if priority != "" {
		filter["priority"] = priority
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	total, err := c.Disputes.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count disputes", err)
	}
	disputes, err := c.Disputes.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list disputes", err)
	}
	return &models.DisputeListResponse{Disputes: disputes, Total: total, Page: page, PerPage: perPage}, nil
}

// UpdateDispute moves a dispute through investigation to resolution or dismissal
func (c *Controller) UpdateDispute(ctx context.Context, actor *models.Profile, id primitive.ObjectID, req models.UpdateDisputeRequest) (*models.Dispute, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	dispute, err := c.Disputes.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, loadError(err, "dispute")
	}
	to, _ := models.DisputeStatusForAction(req.Action)
	if !CanTransitionDispute(dispute.Status, to) {
		return nil, newError(KindState, "cannot %s a %s dispute", req.Action, dispute.Status)
	}

	now := c.now()
	set := bson.M{"status": to, "last_activity": now}
	if req.Note != "" {
		set["admin_notes"] = req.Note
	}
	update := bson.M{"$set": set}
	switch to {
	case models.DisputeStatusResolved, models.DisputeStatusDismissed:
		set["resolved_by"] = actor.ID
		set["resolved_at"] = now
	case models.DisputeStatusOpen:
		update["$unset"] = bson.M{"resolved_by": "", "resolved_at": ""}
	}

	updated, err := c.Disputes.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": dispute.Status}, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, newError(KindState, "dispute changed while updating, try again")
	}
	if err != nil {
		return nil, internalError("failed to update dispute", err)
	}
	c.record(ctx, actor.ID, "dispute_"+req.Action, models.ContentTypeDispute, id.Hex(), req.Note)

	if to == models.DisputeStatusResolved && dispute.Status != to {
		for _, userID := range uniqueIDs(updated.OwnerID, updated.RaisedBy) {
			if userID == actor.ID {
				continue
			}
			c.emit(models.Notification{
				UserID:           userID,
				Title:            "Dispute Resolved",
				Message:          "The dispute regarding your item has been resolved by admin.",
				Type:             models.NotificationDisputeResolved,
				RelatedItemID:    &updated.ItemID,
				RelatedDisputeID: &updated.ID,
			})
		}
	}
	return updated, nil
}

func uniqueIDs(ids ...primitive.ObjectID) []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, id := range ids {
		if !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
