package lifecycle

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

var moderationStatus = map[models.ModerationAction]string{
	models.ModerationApprove: "approved",
	models.ModerationReject:  "rejected",
	models.ModerationArchive: "archived",
	models.ModerationFlag:    "flagged",
	models.ModerationRemove:  "removed",
}

var moderationTitles = map[models.ModerationAction]string{
	models.ModerationApprove: "Item Approved",
	models.ModerationReject:  "Item Rejected",
	models.ModerationArchive: "Item Archived",
	models.ModerationFlag:    "Item Flagged",
	models.ModerationRemove:  "Item Removed",
}

var moderationMessages = map[models.ModerationAction]string{
	models.ModerationApprove: "Your item has been approved and is now visible to other users.",
	models.ModerationReject:  "Your item submission has been rejected. Please review community guidelines.",
	models.ModerationArchive: "Your item has been archived by admin.",
	models.ModerationFlag:    "Your item has been flagged for review. Please contact support if you have questions.",
	models.ModerationRemove:  "Your item has been removed by admin.",
}

// ModerateItem applies an admin moderation action to an item
func (c *Controller) ModerateItem(ctx context.Context, actor *models.Profile, itemID primitive.ObjectID, req models.ModerateItemRequest) (*models.Item, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	item, err := c.moderate(ctx, actor, itemID, req.Action, req.Note)
	if err != nil {
		return nil, err
	}
	c.record(ctx, actor.ID, string(req.Action), models.ContentTypeItem, itemID.Hex(), req.Note)
	return item, nil
}

func (c *Controller) moderate(ctx context.Context, actor *models.Profile, itemID primitive.ObjectID, action models.ModerationAction, note string) (*models.Item, error) {
	item, err := c.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	set := bson.M{
		"moderation_status": moderationStatus[action],
		"moderation_notes":  note,
		"moderated_by":      actor.ID,
		"moderated_at":      now,
		"updated_at":        now,
	}
	if action == models.ModerationFlag {
		set["flagged"] = true
		set["flag_reason"] = note
	}
	if target, ok := action.TargetStatus(); ok {
		if item.Status == models.ItemStatusClaimed && target != models.ItemStatusClaimed {
			return nil, newError(KindState, "a claimed item is settled through its claim")
		}
		if !CanTransitionItem(item.Status, target) {
			return nil, newError(KindState, "cannot %s a %s item", action, item.Status)
		}
		set["status"] = target
	}
	if action == models.ModerationApprove {
		set["flagged"] = false
		set["flag_reason"] = ""
	}

	updated, err := c.Items.FindOneAndUpdate(ctx, bson.M{"_id": item.ID, "status": item.Status}, bson.M{"$set": set})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, newError(KindState, "item changed while updating, try again")
	}
	if err != nil {
		return nil, internalError("failed to moderate item", err)
	}

	c.emit(models.Notification{
		UserID:        item.UserID,
		Title:         moderationTitles[action],
		Message:       moderationMessages[action],
		Type:          "item_" + string(action),
		RelatedItemID: &updated.ID,
	})
	return updated, nil
}

// BulkModerate applies one moderation action to each item independently. Failures
// are reported per item and never undo the items that succeeded.
func (c *Controller) BulkModerate(ctx context.Context, actor *models.Profile, req models.BulkActionRequest) (*models.BulkActionResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	resp := &models.BulkActionResponse{Success: true, Results: make([]models.BulkActionResult, 0, len(req.ItemIDs))}
	for _, raw := range req.ItemIDs {
		result := models.BulkActionResult{ItemID: raw}
		id, err := ParseID(raw, "item_id")
		if err == nil {
			_, err = c.moderate(ctx, actor, id, req.Action, req.Note)
		}
		if err != nil {
			result.Error = errorMessage(err)
			resp.Failed++
		} else {
			result.Success = true
			resp.Successful++
		}
		resp.Results = append(resp.Results, result)
	}
	resp.Processed = len(req.ItemIDs)

	c.record(ctx, actor.ID, "bulk_"+string(req.Action), models.ContentTypeItems, strings.Join(req.ItemIDs, ","), req.Note)
	return resp, nil
}

// ListFlagged returns the flagged item queue. Severity is high for high urgency
// items and medium otherwise.
func (c *Controller) ListFlagged(ctx context.Context, actor *models.Profile, contentType, severity string, page, perPage int) (*models.FlaggedContentResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	resp := &models.FlaggedContentResponse{FlaggedContent: []models.FlaggedContent{}, Page: page, PerPage: perPage}
	if contentType != "" && contentType != models.ContentTypeItem {
		return resp, nil
	}

	filter := bson.M{"flagged": true}
	switch severity {
	case "":
	case "high":
		filter["urgency"] = models.UrgencyHigh
	case "medium":
		filter["urgency"] = bson.M{"$ne": models.UrgencyHigh}
	case "low":
		return resp, nil
	default:
		return nil, newError(KindValidation, "severity: must be one of low, medium, high")
	}

	total, err := c.Items.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count flagged items", err)
	}
	items, err := c.Items.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list flagged items", err)
	}
	c.attachOwners(ctx, items)
	for _, it := range items {
		entry := models.FlaggedContent{
			ID:             it.ID.Hex(),
			Type:           models.ContentTypeItem,
			Title:          it.Title,
			User:           it.OwnerName,
			Email:          it.OwnerEmail,
			Reason:         it.FlagReason,
			FlaggedBy:      "Admin/System",
			CreatedAt:      it.CreatedAt,
			Severity:       "medium",
			ActionRequired: true,
			ReportCount:    1,
		}
		if entry.User == "" {
			entry.User, entry.Email = "Unknown", "Unknown"
		}
		if entry.Reason == "" {
			entry.Reason = "No reason provided"
		}
		if it.Urgency == models.UrgencyHigh {
			entry.Severity = "high"
		}
		resp.FlaggedContent = append(resp.FlaggedContent, entry)
	}
	resp.Total = int(total)
	return resp, nil
}

// HandleFlagged resolves a flagged item: approve clears the flag, remove takes the
// item down and escalate opens a dispute for it.
func (c *Controller) HandleFlagged(ctx context.Context, actor *models.Profile, contentID primitive.ObjectID, req models.FlaggedActionRequest) (interface{}, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	var (
		out interface{}
		err error
	)
	switch req.Action {
	case "approve":
		out, err = c.moderate(ctx, actor, contentID, models.ModerationApprove, req.Note)
	case "remove":
		out, err = c.moderate(ctx, actor, contentID, models.ModerationRemove, req.Note)
	case "escalate":
		out, err = c.escalate(ctx, actor, contentID, req.Note)
	}
	if err != nil {
		return nil, err
	}
	c.record(ctx, actor.ID, req.Action, req.ContentType, contentID.Hex(), req.Note)
	return out, nil
}

func errorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}
