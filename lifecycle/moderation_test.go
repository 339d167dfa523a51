package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

func setOf(u bson.M) bson.M {
	set, _ := u["$set"].(bson.M)
	return set
}

func TestModerateItemFlag(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	adm, alice := admin(), user("alice")
	item := activeItem(alice)
	flagged := *item
	flagged.Flagged = true

	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": item.ID, "status": models.ItemStatusActive},
		mock.MatchedBy(func(u bson.M) bool {
			set := setOf(u)
			_, statusSet := set["status"]
			return set["flagged"] == true && set["flag_reason"] == "spam" &&
				set["moderation_status"] == "flagged" && !statusSet
		})).Return(&flagged, nil)

	got, err := f.c.ModerateItem(context.Background(), adm, item.ID, models.ModerateItemRequest{Action: models.ModerationFlag, Note: "spam"})
	require.NoError(t, err)
	assert.True(t, got.Flagged)
	assert.Equal(t, models.ItemStatusActive, got.Status)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].UserID)
	assert.Equal(t, "Item Flagged", events[0].Title)
	assert.Equal(t, "item_flag", events[0].Type)
	f.actions.AssertCalled(t, "InsertOne", mock.Anything, mock.MatchedBy(func(a models.AdminAction) bool {
		return a.Action == "flag" && a.AdminID == adm.ID && a.ContentID == item.ID.Hex()
	}))
}

func TestModerateItemApproveClearsFlag(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	item := activeItem(user("alice"))
	item.Status = models.ItemStatusRejected
	item.Flagged = true
	approved := *item
	approved.Status = models.ItemStatusActive
	approved.Flagged = false

	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": item.ID, "status": models.ItemStatusRejected},
		mock.MatchedBy(func(u bson.M) bool {
			set := setOf(u)
			return set["status"] == models.ItemStatusActive && set["flagged"] == false && set["flag_reason"] == ""
		})).Return(&approved, nil)

	got, err := f.c.ModerateItem(context.Background(), admin(), item.ID, models.ModerateItemRequest{Action: models.ModerationApprove})
	require.NoError(t, err)
	assert.False(t, got.Flagged)
	f.items.AssertExpectations(t)
}

func TestModerateItemClaimed(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	item.Status = models.ItemStatusClaimed
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)

	for _, action := range []models.ModerationAction{models.ModerationArchive, models.ModerationRemove, models.ModerationReject} {
		_, err := f.c.ModerateItem(context.Background(), admin(), item.ID, models.ModerateItemRequest{Action: action})
		assertKind(t, err, lifecycle.KindState)
	}
	f.assertNoWrites(t)
	assert.Empty(t, f.notifier.Events())
}

func TestModerateItemTerminal(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	item.Status = models.ItemStatusRemoved
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)

	_, err := f.c.ModerateItem(context.Background(), admin(), item.ID, models.ModerateItemRequest{Action: models.ModerationApprove})
	assertKind(t, err, lifecycle.KindState)
	f.assertNoWrites(t)
}

func TestModerateItemInvalidAction(t *testing.T) {
	f := newFixture()
	_, err := f.c.ModerateItem(context.Background(), admin(), primitive.NewObjectID(), models.ModerateItemRequest{Action: "burn"})
	assertKind(t, err, lifecycle.KindValidation)
}

func TestBulkModeratePartialFailure(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	adm := admin()
	ok := activeItem(user("alice"))
	archived := *ok
	archived.Status = models.ItemStatusArchived
	missing := primitive.NewObjectID()

	f.items.On("FindOne", mock.Anything, bson.M{"_id": ok.ID}).Return(ok, nil)
	f.items.On("FindOne", mock.Anything, bson.M{"_id": missing}).Return(nil, mongo.ErrNoDocuments)
	f.items.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": ok.ID, "status": models.ItemStatusActive}, mock.Anything).
		Return(&archived, nil)

	ids := []string{ok.ID.Hex(), missing.Hex(), "not-an-id"}
	resp, err := f.c.BulkModerate(context.Background(), adm, models.BulkActionRequest{ItemIDs: ids, Action: models.ModerationArchive})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Processed)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "item not found", resp.Results[1].Error)
	assert.Equal(t, "item_id: must be a valid id", resp.Results[2].Error)

	f.actions.AssertNumberOfCalls(t, "InsertOne", 1)
	f.actions.AssertCalled(t, "InsertOne", mock.Anything, mock.MatchedBy(func(a models.AdminAction) bool {
		return a.Action == "bulk_archive" && a.ContentType == models.ContentTypeItems
	}))
}

func TestBulkModerateStorageErrorIsHidden(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	id := primitive.NewObjectID()
	f.items.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, errors.New("connection reset"))

	resp, err := f.c.BulkModerate(context.Background(), admin(), models.BulkActionRequest{ItemIDs: []string{id.Hex()}, Action: models.ModerationRemove})
	require.NoError(t, err)
	assert.Equal(t, "internal error", resp.Results[0].Error)
}

func TestListFlagged(t *testing.T) {
	f := newFixture()
	alice := user("alice")
	urgent := activeItem(alice)
	urgent.Flagged = true
	urgent.Urgency = models.UrgencyHigh
	orphan := activeItem(user("ghost"))
	orphan.Flagged = true

	filter := bson.M{"flagged": true}
	f.items.On("CountDocuments", mock.Anything, filter).Return(int64(2), nil)
	f.items.On("Find", mock.Anything, filter, mock.Anything).Return([]models.Item{*urgent, *orphan}, nil)
	f.profiles.On("Find", mock.Anything, mock.Anything).Return([]models.Profile{*alice}, nil)

	resp, err := f.c.ListFlagged(context.Background(), admin(), "", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.FlaggedContent, 2)
	assert.Equal(t, "high", resp.FlaggedContent[0].Severity)
	assert.Equal(t, "alice", resp.FlaggedContent[0].User)
	assert.Equal(t, "medium", resp.FlaggedContent[1].Severity)
	assert.Equal(t, "Unknown", resp.FlaggedContent[1].User)
	assert.Equal(t, "No reason provided", resp.FlaggedContent[1].Reason)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 20, resp.PerPage)
}

func TestListFlaggedLowSeverityIsEmpty(t *testing.T) {
	f := newFixture()
	resp, err := f.c.ListFlagged(context.Background(), admin(), "", "low", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, resp.FlaggedContent)
	f.items.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.c.ListFlagged(context.Background(), admin(), "", "critical", 1, 20)
	assertKind(t, err, lifecycle.KindValidation)
}

func TestHandleFlaggedEscalate(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	adm, alice := admin(), user("alice")
	item := activeItem(alice)
	item.Flagged = true
	item.FlagReason = "looks fake"
	disputeID := primitive.NewObjectID()

	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.disputes.On("InsertOne", mock.Anything, mock.MatchedBy(func(d models.Dispute) bool {
		return d.Priority == "high" && d.Reason == "Escalated from flagged content: looks fake" &&
			d.RaisedBy == adm.ID && d.Status == models.DisputeStatusOpen
	})).Return(disputeID, nil)

	out, err := f.c.HandleFlagged(context.Background(), adm, item.ID, models.FlaggedActionRequest{Action: "escalate", ContentType: "item"})
	require.NoError(t, err)
	dispute, ok := out.(*models.Dispute)
	require.True(t, ok)
	assert.Equal(t, disputeID, dispute.ID)
	assert.Equal(t, models.NotificationDisputeOpened, f.notifier.Events()[0].Type)
	f.items.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
	f.actions.AssertCalled(t, "InsertOne", mock.Anything, mock.MatchedBy(func(a models.AdminAction) bool {
		return a.Action == "escalate"
	}))
}
