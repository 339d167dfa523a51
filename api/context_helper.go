package api

import (
	"context"
	"time"

	"github.com/umt-lostfound/lostfound-api/models"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type profileKey struct{}

type requestIDKey struct{}

// WithProfile stores the authenticated profile in ctx
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns the authenticated profile, or nil for anonymous requests
func ProfileFromContext(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey{}).(*models.Profile)
	return p
}

// RequestID returns the id assigned to the request by RequestMiddleware
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
