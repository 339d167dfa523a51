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

// CreateClaim files a pending claim by actor against an active item owned by someone else
func (c *Controller) CreateClaim(ctx context.Context, actor *models.Profile, req models.CreateClaimRequest) (*models.ClaimRequest, error) {
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
	if item.UserID == actor.ID {
		return nil, newError(KindConflict, "you cannot claim your own item")
	}
	if item.Status != models.ItemStatusActive {
		return nil, newError(KindState, "item is %s and cannot be claimed", item.Status)
	}
	pending, err := c.Claims.CountDocuments(ctx, bson.M{
		"item_id":    item.ID,
		"claimer_id": actor.ID,
		"status":     models.ClaimStatusPending,
	})
	if err != nil {
		return nil, internalError("failed to check existing claims", err)
	}
	if pending > 0 {
		return nil, newError(KindDuplicate, "you already have a pending claim on this item")
	}

	now := c.now()
	claim := models.ClaimRequest{
		ItemID:       item.ID,
		ClaimerID:    actor.ID,
		ItemOwnerID:  item.UserID,
		Message:      req.Message,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Status:       models.ClaimStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		ClaimerName:  actor.FullName,
		ClaimerEmail: actor.Email,
		ItemTitle:    item.Title,
		ItemType:     item.Type,
	}
	id, err := c.Claims.InsertOne(ctx, claim)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, newError(KindDuplicate, "you already have a pending claim on this item")
		}
		return nil, internalError("failed to create claim", err)
	}
	claim.ID = id

	c.emit(models.Notification{
		UserID:         item.UserID,
		Title:          "New Claim Request",
		Message:        fmt.Sprintf("Someone wants to claim your %s item: %s", item.Type, item.Title),
		Type:           models.NotificationItemClaimed,
		RelatedItemID:  &item.ID,
		RelatedClaimID: &claim.ID,
	})
	return &claim, nil
}

// DecideClaim lets an admin approve, reject or complete a claim. Approval claims
// the item, completion resolves it and rejecting an approved claim re-activates it.
func (c *Controller) DecideClaim(ctx context.Context, actor *models.Profile, claimID primitive.ObjectID, req models.DecideClaimRequest) (*models.ClaimRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	claim, err := c.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status == req.Status {
		return claim, nil
	}
	if !CanTransitionClaim(claim.Status, req.Status) {
		return nil, newError(KindState, "cannot move claim from %s to %s", claim.Status, req.Status)
	}

	updated, _, err := c.moveClaim(ctx, actor, claim, req.Status, req.AdminNotes, nil)
	if err != nil {
		return nil, err
	}
	c.record(ctx, actor.ID, "claim_"+string(req.Status), models.ContentTypeClaim, claimID.Hex(), req.AdminNotes)
	c.notifyClaimDecision(updated)
	return updated, nil
}

// moveClaim updates the claim first and then the item that goes with the
// transition, both conditional on their current status. When the item update
// fails the claim is put back and the failure reported.
func (c *Controller) moveClaim(ctx context.Context, actor *models.Profile, claim *models.ClaimRequest, to models.ClaimStatus, notes string, itemSet bson.M) (*models.ClaimRequest, *models.Item, error) {
	now := c.now()
	claimSet := bson.M{
		"status":     to,
		"decided_by": actor.ID,
		"decided_at": now,
		"updated_at": now,
	}
	if notes != "" {
		claimSet["admin_notes"] = notes
	}
	updatedClaim, err := c.Claims.FindOneAndUpdate(ctx, bson.M{"_id": claim.ID, "status": claim.Status}, bson.M{"$set": claimSet})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, newError(KindState, "claim changed while updating, try again")
	}
	if err != nil {
		return nil, nil, internalError("failed to update claim", err)
	}

	itemFrom, itemTo, ok := itemStatusForClaim(claim.Status, to)
	if !ok {
		return updatedClaim, nil, nil
	}
	if itemSet == nil {
		itemSet = bson.M{}
	}
	itemSet["status"] = itemTo
	itemSet["updated_at"] = now
	updatedItem, err := c.Items.FindOneAndUpdate(ctx, bson.M{"_id": claim.ItemID, "status": itemFrom}, bson.M{"$set": itemSet})
	if err != nil {
		c.revertClaim(ctx, claim, to)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, newError(KindState, "item is no longer %s", itemFrom)
		}
		return nil, nil, internalError("failed to update item", err)
	}
	return updatedClaim, updatedItem, nil
}

// revertTimeout bounds the compensating write, which outlives the request context
const revertTimeout = 5 * time.Second

// revertClaim restores a claim moved by moveClaim whose item update failed
func (c *Controller) revertClaim(ctx context.Context, claim *models.ClaimRequest, movedTo models.ClaimStatus) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revertTimeout)
	defer cancel()

	restore := bson.M{
		"status":      claim.Status,
		"admin_notes": claim.AdminNotes,
		"updated_at":  claim.UpdatedAt,
	}
	update := bson.M{"$set": restore}
	if claim.DecidedBy == nil {
		update["$unset"] = bson.M{"decided_by": "", "decided_at": ""}
	} else {
		restore["decided_by"] = claim.DecidedBy
		restore["decided_at"] = claim.DecidedAt
	}
	_, err := c.Claims.UpdateOne(ctx, bson.M{"_id": claim.ID, "status": movedTo}, update)
	if err != nil {
		zap.S().With(err).Errorw("failed to revert claim after item update failure",
			"claim_id", claim.ID.Hex(), "status", claim.Status)
	}
}

func (c *Controller) notifyClaimDecision(claim *models.ClaimRequest) {
	n := models.Notification{
		UserID:         claim.ClaimerID,
		RelatedItemID:  &claim.ItemID,
		RelatedClaimID: &claim.ID,
	}
	switch claim.Status {
	case models.ClaimStatusApproved:
		n.Title = "Claim Approved"
		n.Message = "Your claim request has been approved by admin."
		n.Type = models.NotificationClaimApproved
	case models.ClaimStatusRejected:
		n.Title = "Claim Rejected"
		n.Message = "Your claim request has been rejected by admin."
		n.Type = models.NotificationClaimRejected
	case models.ClaimStatusCompleted:
		n.Title = "Claim Completed"
		n.Message = "Your claim has been completed and the item marked as returned."
		n.Type = models.NotificationClaimCompleted
	default:
		return
	}
	c.emit(n)
}

// ListMyClaims returns the claims filed by actor
func (c *Controller) ListMyClaims(ctx context.Context, actor *models.Profile, page, perPage int) (*models.ClaimListResponse, error) {
	if actor == nil {
		return nil, newError(KindAuthentication, "authentication required")
	}
	page, perPage = Paging(page, perPage, DefaultPerPage, MaxPerPage)
	return c.listClaims(ctx, bson.M{"claimer_id": actor.ID}, page, perPage)
}

// AdminListClaims returns claims in any status, optionally filtered by one
func (c *Controller) AdminListClaims(ctx context.Context, actor *models.Profile, status models.ClaimStatus, page, perPage int) (*models.ClaimListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if status != "" {
		if !status.IsValid() {
			return nil, newError(KindValidation, "status: must be a valid value")
		}
		filter["status"] = status
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	return c.listClaims(ctx, filter, page, perPage)
}

func (c *Controller) listClaims(ctx context.Context, filter bson.M, page, perPage int) (*models.ClaimListResponse, error) {
	total, err := c.Claims.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count claims", err)
	}
	claims, err := c.Claims.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list claims", err)
	}
	return &models.ClaimListResponse{Claims: claims, Total: total, Page: page, PerPage: perPage}, nil
}
