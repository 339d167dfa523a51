package lifecycle_test

import (
	"context"
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

func disputeRequest(item *models.Item) models.CreateDisputeRequest {
	return models.CreateDisputeRequest{ItemID: item.ID.Hex(), Reason: "The finder refuses to hand it over"}
}

func TestOpenDisputeByClaimant(t *testing.T) {
	f := newFixture()
	alice, bob := user("alice"), user("bob")
	item := activeItem(alice)
	id := primitive.NewObjectID()
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("CountDocuments", mock.Anything, bson.M{"item_id": item.ID, "claimer_id": bob.ID}).Return(int64(1), nil)
	f.disputes.On("InsertOne", mock.Anything, mock.MatchedBy(func(d models.Dispute) bool {
		return d.OwnerID == alice.ID && d.RaisedBy == bob.ID && d.Priority == "medium"
	})).Return(id, nil)

	d, err := f.c.OpenDispute(context.Background(), bob, disputeRequest(item))
	require.NoError(t, err)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, models.DisputeStatusOpen, d.Status)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].UserID)
	assert.Equal(t, id, *events[0].RelatedDisputeID)
}

func TestOpenDisputeByOwnerDoesNotNotify(t *testing.T) {
	f := newFixture()
	alice := user("alice")
	item := activeItem(alice)
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.disputes.On("InsertOne", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	_, err := f.c.OpenDispute(context.Background(), alice, disputeRequest(item))
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Events())
	f.claims.AssertNotCalled(t, "CountDocuments", mock.Anything, mock.Anything)
}

func TestOpenDisputeUninvolved(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	mallory := user("mallory")
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := f.c.OpenDispute(context.Background(), mallory, disputeRequest(item))
	assertKind(t, err, lifecycle.KindAuthorization)
	f.assertNoWrites(t)
}

func TestOpenDisputeClaimOfOtherItem(t *testing.T) {
	f := newFixture()
	alice, bob := user("alice"), user("bob")
	item := activeItem(alice)
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: primitive.NewObjectID(), ClaimerID: bob.ID}
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)

	req := disputeRequest(item)
	req.ClaimID = claim.ID.Hex()
	_, err := f.c.OpenDispute(context.Background(), bob, req)
	assertKind(t, err, lifecycle.KindValidation)
}

func TestUpdateDisputeResolve(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	adm, alice, bob := admin(), user("alice"), user("bob")
	dispute := &models.Dispute{ID: primitive.NewObjectID(), ItemID: primitive.NewObjectID(), OwnerID: alice.ID, RaisedBy: bob.ID, Status: models.DisputeStatusInvestigating}
	resolved := *dispute
	resolved.Status = models.DisputeStatusResolved

	f.disputes.On("FindOne", mock.Anything, bson.M{"_id": dispute.ID}).Return(dispute, nil)
	f.disputes.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": dispute.ID, "status": models.DisputeStatusInvestigating},
		mock.MatchedBy(func(u bson.M) bool {
			set := setOf(u)
			return set["status"] == models.DisputeStatusResolved && set["resolved_by"] == adm.ID && set["admin_notes"] == "returned"
		})).Return(&resolved, nil)

	got, err := f.c.UpdateDispute(context.Background(), adm, dispute.ID, models.UpdateDisputeRequest{Action: "resolve", Note: "returned"})
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, got.Status)

	events := f.notifier.Events()
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []primitive.ObjectID{alice.ID, bob.ID}, []primitive.ObjectID{events[0].UserID, events[1].UserID})
	f.actions.AssertCalled(t, "InsertOne", mock.Anything, mock.MatchedBy(func(a models.AdminAction) bool {
		return a.Action == "dispute_resolve"
	}))
}

func TestUpdateDisputeReopenClearsResolution(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	dispute := &models.Dispute{ID: primitive.NewObjectID(), Status: models.DisputeStatusDismissed}
	reopened := *dispute
	reopened.Status = models.DisputeStatusOpen

	f.disputes.On("FindOne", mock.Anything, bson.M{"_id": dispute.ID}).Return(dispute, nil)
	f.disputes.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.MatchedBy(func(u bson.M) bool {
		_, ok := u["$unset"]
		return ok
	})).Return(&reopened, nil)

	_, err := f.c.UpdateDispute(context.Background(), admin(), dispute.ID, models.UpdateDisputeRequest{Action: "reopen"})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Events())
}

func TestUpdateDisputeIllegal(t *testing.T) {
	f := newFixture()
	dispute := &models.Dispute{ID: primitive.NewObjectID(), Status: models.DisputeStatusResolved}
	f.disputes.On("FindOne", mock.Anything, bson.M{"_id": dispute.ID}).Return(dispute, nil)

	_, err := f.c.UpdateDispute(context.Background(), admin(), dispute.ID, models.UpdateDisputeRequest{Action: "investigate"})
	assertKind(t, err, lifecycle.KindState)
	f.assertNoWrites(t)
}

func TestUpdateDisputeMissing(t *testing.T) {
	f := newFixture()
	f.disputes.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := f.c.UpdateDispute(context.Background(), admin(), primitive.NewObjectID(), models.UpdateDisputeRequest{Action: "dismiss"})
	assertKind(t, err, lifecycle.KindNotFound)
}
