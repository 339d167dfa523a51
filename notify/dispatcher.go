package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

// EventNewNotification is the websocket event carrying a fresh inbox entry
const EventNewNotification = "new_notification"

const (
	defaultBuffer  = 256
	deliverTimeout = 10 * time.Second
)

// Pusher sends a live event to the open connections of a user
type Pusher interface {
	Send(userID, event string, data interface{}) int
}

// Mailer sends a notification email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Dispatcher delivers notifications in the background. Emit never blocks:
// when the queue is full the event is dropped. Delivery is at most once and
// unordered across restarts.
type Dispatcher struct {
	Store    databases.NotificationDatabase
	Profiles databases.ProfileDatabase
	Pusher   Pusher
	Mailer   Mailer

	events  chan models.Notification
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewDispatcher starts a dispatcher with a queue of buffer events. Pusher and
// Mailer may be nil.
func NewDispatcher(store databases.NotificationDatabase, profiles databases.ProfileDatabase, pusher Pusher, mailer Mailer, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		Store:    store,
		Profiles: profiles,
		Pusher:   pusher,
		Mailer:   mailer,
		events:   make(chan models.Notification, buffer),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues a notification for delivery
func (d *Dispatcher) Emit(n models.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.events <- n:
	default:
		d.dropped.Add(1)
		zap.S().Warnw("notification queue full, dropping event",
			"user_id", n.UserID.Hex(), "type", n.Type)
	}
}

// Dropped returns how many events were discarded because the queue was full
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for the queued ones to be delivered
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.events {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	id, err := d.Store.InsertOne(ctx, n)
	if err != nil {
		zap.S().With(err).Errorw("failed to store notification", "user_id", n.UserID.Hex(), "type", n.Type)
		return
	}
	n.ID = id

	if d.Pusher != nil {
		d.Pusher.Send(n.UserID.Hex(), EventNewNotification, n)
	}
	if d.Mailer == nil || d.Profiles == nil {
		return
	}
	profile, err := d.Profiles.FindOne(ctx, bson.M{"_id": n.UserID})
	if err != nil {
		zap.S().With(err).Warnw("failed to load notification recipient", "user_id", n.UserID.Hex())
		return
	}
	if profile.Email == "" {
		return
	}
	if err := d.Mailer.Send(ctx, profile.Email, n.Title, n.Message); err != nil {
		zap.S().With(err).Warnw("failed to email notification", "user_id", n.UserID.Hex(), "type", n.Type)
	}
}
