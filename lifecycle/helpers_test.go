package lifecycle_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umt-lostfound/lostfound-api/databases/mocks"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Notification
}

func (r *recordingNotifier) Emit(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *recordingNotifier) Events() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.events...)
}

type fixture struct {
	c             *lifecycle.Controller
	profiles      *mocks.ProfileDatabase
	items         *mocks.ItemDatabase
	claims        *mocks.ClaimDatabase
	actions       *mocks.AdminActionDatabase
	disputes      *mocks.DisputeDatabase
	notifications *mocks.NotificationDatabase
	notifier      *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		profiles:      &mocks.ProfileDatabase{},
		items:         &mocks.ItemDatabase{},
		claims:        &mocks.ClaimDatabase{},
		actions:       &mocks.AdminActionDatabase{},
		disputes:      &mocks.DisputeDatabase{},
		notifications: &mocks.NotificationDatabase{},
		notifier:      &recordingNotifier{},
	}
	f.c = &lifecycle.Controller{
		Profiles:      f.profiles,
		Items:         f.items,
		Claims:        f.claims,
		Actions:       f.actions,
		Disputes:      f.disputes,
		Notifications: f.notifications,
		Notifier:      f.notifier,
		Now:           func() time.Time { return fixedNow },
	}
	return f
}

// expectLedger accepts any admin action write
func (f *fixture) expectLedger() {
	f.actions.On("InsertOne", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)
}

func (f *fixture) assertNoWrites(t *testing.T) {
	t.Helper()
	for _, m := range []*mock.Mock{&f.items.Mock, &f.claims.Mock, &f.profiles.Mock, &f.disputes.Mock} {
		m.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
		m.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything)
		m.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	}
	f.actions.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func user(name string) *models.Profile {
	return &models.Profile{ID: primitive.NewObjectID(), Email: name + "@x.edu", FullName: name}
}

func admin() *models.Profile {
	p := user("admin")
	p.IsAdmin = true
	return p
}

func activeItem(owner *models.Profile) *models.Item {
	return &models.Item{
		ID:       primitive.NewObjectID(),
		UserID:   owner.ID,
		Title:    "Lost wallet",
		Type:     models.ItemTypeLost,
		Category: models.CategoryPersonal,
		Status:   models.ItemStatusActive,
	}
}

func assertKind(t *testing.T, err error, kind lifecycle.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind, lifecycle.KindOf(err), err.Error())
	}
}
