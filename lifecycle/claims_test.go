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

func claimRequest(item *models.Item) models.CreateClaimRequest {
	return models.CreateClaimRequest{
		ItemID:  item.ID.Hex(),
		Message: "It is a brown leather wallet with my student card inside",
	}
}

func TestCreateClaim(t *testing.T) {
	f := newFixture()
	alice, bob := user("alice"), user("bob")
	item := activeItem(alice)

	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("CountDocuments", mock.Anything, bson.M{
		"item_id": item.ID, "claimer_id": bob.ID, "status": models.ClaimStatusPending,
	}).Return(int64(0), nil)
	claimID := primitive.NewObjectID()
	f.claims.On("InsertOne", mock.Anything, mock.MatchedBy(func(c models.ClaimRequest) bool {
		return c.ClaimerID == bob.ID && c.ItemOwnerID == alice.ID && c.Status == models.ClaimStatusPending
	})).Return(claimID, nil)

	claim, err := f.c.CreateClaim(context.Background(), bob, claimRequest(item))
	require.NoError(t, err)
	assert.Equal(t, claimID, claim.ID)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.Equal(t, "bob", claim.ClaimerName)
	assert.Equal(t, "Lost wallet", claim.ItemTitle)
	assert.Equal(t, fixedNow, claim.CreatedAt)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, alice.ID, events[0].UserID)
	assert.Equal(t, models.NotificationItemClaimed, events[0].Type)
	assert.Equal(t, "Someone wants to claim your lost item: Lost wallet", events[0].Message)
	assert.Equal(t, claimID, *events[0].RelatedClaimID)
}

func TestCreateClaimOwnItem(t *testing.T) {
	f := newFixture()
	bob := user("bob")
	item := activeItem(bob)
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)

	_, err := f.c.CreateClaim(context.Background(), bob, claimRequest(item))
	assertKind(t, err, lifecycle.KindConflict)
	f.assertNoWrites(t)
	assert.Empty(t, f.notifier.Events())
}

func TestCreateClaimInactiveItem(t *testing.T) {
	for _, status := range []models.ItemStatus{
		models.ItemStatusClaimed, models.ItemStatusResolved, models.ItemStatusArchived,
		models.ItemStatusRejected, models.ItemStatusRemoved,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			item := activeItem(user("alice"))
			item.Status = status
			f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)

			_, err := f.c.CreateClaim(context.Background(), user("bob"), claimRequest(item))
			assertKind(t, err, lifecycle.KindState)
			f.assertNoWrites(t)
		})
	}
}

func TestCreateClaimDuplicatePending(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := f.c.CreateClaim(context.Background(), user("bob"), claimRequest(item))
	assertKind(t, err, lifecycle.KindDuplicate)
	f.assertNoWrites(t)
}

func TestCreateClaimDuplicateKeyRace(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(item, nil)
	f.claims.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	f.claims.On("InsertOne", mock.Anything, mock.Anything).Return(primitive.NilObjectID,
		mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}})

	_, err := f.c.CreateClaim(context.Background(), user("bob"), claimRequest(item))
	assertKind(t, err, lifecycle.KindDuplicate)
	assert.Empty(t, f.notifier.Events())
}

func TestCreateClaimMissingItem(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	f.items.On("FindOne", mock.Anything, bson.M{"_id": item.ID}).Return(nil, mongo.ErrNoDocuments)

	_, err := f.c.CreateClaim(context.Background(), user("bob"), claimRequest(item))
	assertKind(t, err, lifecycle.KindNotFound)
}

func TestCreateClaimValidation(t *testing.T) {
	f := newFixture()
	_, err := f.c.CreateClaim(context.Background(), user("bob"), models.CreateClaimRequest{ItemID: "nope", Message: "short"})
	assertKind(t, err, lifecycle.KindValidation)
}

func TestCreateClaimBanned(t *testing.T) {
	f := newFixture()
	bob := user("bob")
	bob.IsBanned = true
	_, err := f.c.CreateClaim(context.Background(), bob, claimRequest(activeItem(user("alice"))))
	assertKind(t, err, lifecycle.KindAuthorization)
}

func TestDecideClaimApprove(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	adm, alice, bob := admin(), user("alice"), user("bob")
	item := activeItem(alice)
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: item.ID, ClaimerID: bob.ID, Status: models.ClaimStatusPending}

	approved := *claim
	approved.Status = models.ClaimStatusApproved
	claimed := *item
	claimed.Status = models.ItemStatusClaimed

	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)
	f.claims.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": claim.ID, "status": models.ClaimStatusPending}, mock.Anything).
		Return(&approved, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": item.ID, "status": models.ItemStatusActive},
		mock.MatchedBy(func(u bson.M) bool {
			return u["$set"].(bson.M)["status"] == models.ItemStatusClaimed
		})).Return(&claimed, nil)

	got, err := f.c.DecideClaim(context.Background(), adm, claim.ID,
		models.DecideClaimRequest{Status: models.ClaimStatusApproved, AdminNotes: "id checked"})
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, got.Status)
	f.items.AssertExpectations(t)

	f.actions.AssertCalled(t, "InsertOne", mock.Anything, mock.MatchedBy(func(a models.AdminAction) bool {
		return a.Action == "claim_approved" && a.AdminID == adm.ID && a.ContentID == claim.ID.Hex()
	}))
	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, bob.ID, events[0].UserID)
	assert.Equal(t, models.NotificationClaimApproved, events[0].Type)
}

func TestDecideClaimApproveItemNoLongerActive(t *testing.T) {
	f := newFixture()
	adm := admin()
	item := activeItem(user("alice"))
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: item.ID, ClaimerID: primitive.NewObjectID(), Status: models.ClaimStatusPending}
	approved := *claim
	approved.Status = models.ClaimStatusApproved

	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)
	f.claims.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(&approved, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	f.claims.On("UpdateOne", mock.Anything, bson.M{"_id": claim.ID, "status": models.ClaimStatusApproved},
		mock.MatchedBy(func(u bson.M) bool {
			return u["$set"].(bson.M)["status"] == models.ClaimStatusPending && u["$unset"] != nil
		})).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	_, err := f.c.DecideClaim(context.Background(), adm, claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	assertKind(t, err, lifecycle.KindState)
	f.claims.AssertExpectations(t)
	f.actions.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.Events())
}

func TestDecideClaimRevertSurvivesDeadline(t *testing.T) {
	f := newFixture()
	item := activeItem(user("alice"))
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: item.ID, ClaimerID: primitive.NewObjectID(), Status: models.ClaimStatusPending}
	approved := *claim
	approved.Status = models.ClaimStatusApproved

	ctx, cancel := context.WithCancel(context.Background())
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)
	f.claims.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(&approved, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.DeadlineExceeded)
	f.claims.On("UpdateOne", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
		bson.M{"_id": claim.ID, "status": models.ClaimStatusApproved}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	_, err := f.c.DecideClaim(ctx, admin(), claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	assertKind(t, err, lifecycle.KindInternal)
	f.claims.AssertExpectations(t)
}

func TestDecideClaimRejectApproved(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	item := activeItem(user("alice"))
	item.Status = models.ItemStatusClaimed
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: item.ID, ClaimerID: primitive.NewObjectID(), Status: models.ClaimStatusApproved}
	rejected := *claim
	rejected.Status = models.ClaimStatusRejected
	reactivated := *item
	reactivated.Status = models.ItemStatusActive

	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)
	f.claims.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": claim.ID, "status": models.ClaimStatusApproved}, mock.Anything).
		Return(&rejected, nil)
	f.items.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": item.ID, "status": models.ItemStatusClaimed}, mock.Anything).
		Return(&reactivated, nil)

	got, err := f.c.DecideClaim(context.Background(), admin(), claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusRejected, got.Status)
	f.items.AssertExpectations(t)
	assert.Equal(t, models.NotificationClaimRejected, f.notifier.Events()[0].Type)
}

func TestDecideClaimRejectPendingLeavesItem(t *testing.T) {
	f := newFixture()
	f.expectLedger()
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), ItemID: primitive.NewObjectID(), Status: models.ClaimStatusPending}
	rejected := *claim
	rejected.Status = models.ClaimStatusRejected

	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)
	f.claims.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything).Return(&rejected, nil)

	_, err := f.c.DecideClaim(context.Background(), admin(), claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusRejected})
	require.NoError(t, err)
	f.items.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecideClaimIllegalTransition(t *testing.T) {
	f := newFixture()
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), Status: models.ClaimStatusRejected}
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)

	_, err := f.c.DecideClaim(context.Background(), admin(), claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	assertKind(t, err, lifecycle.KindState)
	f.assertNoWrites(t)
}

func TestDecideClaimSameStatusIsNoop(t *testing.T) {
	f := newFixture()
	claim := &models.ClaimRequest{ID: primitive.NewObjectID(), Status: models.ClaimStatusApproved}
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": claim.ID}).Return(claim, nil)

	got, err := f.c.DecideClaim(context.Background(), admin(), claim.ID, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, claim, got)
	f.assertNoWrites(t)
}

func TestDecideClaimNotAdmin(t *testing.T) {
	requests := []models.DecideClaimRequest{
		{Status: models.ClaimStatusApproved},
		{Status: "bogus"},
		{},
	}
	for _, req := range requests {
		f := newFixture()
		_, err := f.c.DecideClaim(context.Background(), user("bob"), primitive.NewObjectID(), req)
		assertKind(t, err, lifecycle.KindAuthorization)
		f.assertNoWrites(t)
	}
}

func TestDecideClaimMissing(t *testing.T) {
	f := newFixture()
	id := primitive.NewObjectID()
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, mongo.ErrNoDocuments)

	_, err := f.c.DecideClaim(context.Background(), admin(), id, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	assertKind(t, err, lifecycle.KindNotFound)
}

func TestDecideClaimStorageFailure(t *testing.T) {
	f := newFixture()
	id := primitive.NewObjectID()
	f.claims.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, errors.New("connection reset"))

	_, err := f.c.DecideClaim(context.Background(), admin(), id, models.DecideClaimRequest{Status: models.ClaimStatusApproved})
	assertKind(t, err, lifecycle.KindInternal)
}

func TestListMyClaims(t *testing.T) {
	f := newFixture()
	bob := user("bob")
	f.claims.On("CountDocuments", mock.Anything, bson.M{"claimer_id": bob.ID}).Return(int64(1), nil)
	f.claims.On("Find", mock.Anything, bson.M{"claimer_id": bob.ID}, mock.Anything).
		Return([]models.ClaimRequest{{ClaimerID: bob.ID}}, nil)

	resp, err := f.c.ListMyClaims(context.Background(), bob, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, lifecycle.DefaultPerPage, resp.PerPage)
	assert.Len(t, resp.Claims, 1)
}
