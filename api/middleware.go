package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	guardian "github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/auth"
	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

// tokenCacheTTL bounds how long a verified token skips signature checks
const tokenCacheTTL = 5 * time.Minute

// ErrUnauthorized is returned for missing, invalid and expired tokens and for
// tokens of deleted profiles
var ErrUnauthorized = errors.New("invalid or expired token")

// Authenticator resolves bearer tokens to profiles. Verified tokens are cached by
// the go-guardian bearer strategy; the profile itself is reloaded on every
// request so bans and role changes apply immediately.
type Authenticator struct {
	Tokens   *auth.TokenService
	Profiles databases.ProfileDatabase

	guardian guardian.Authenticator
}

// NewAuthenticator sets up the go-guardian bearer strategy
func NewAuthenticator(tokens *auth.TokenService, profiles databases.ProfileDatabase) *Authenticator {
	a := &Authenticator{Tokens: tokens, Profiles: profiles}
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	a.guardian = guardian.New()
	a.guardian.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.validateToken, cache))
	return a
}

func (a *Authenticator) validateToken(ctx context.Context, r *http.Request, token string) (guardian.Info, error) {
	claims, err := a.Tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return guardian.NewDefaultUser(claims.Email, claims.Subject, nil, nil), nil
}

// Authenticate returns the profile owning the request's bearer token
func (a *Authenticator) Authenticate(r *http.Request) (*models.Profile, error) {
	info, err := a.guardian.Authenticate(r)
	if err != nil {
		return nil, ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(info.ID())
	if err != nil {
		return nil, ErrUnauthorized
	}

	ctx, cancel := WithQueryTimeout(r.Context())
	defer cancel()
	profile, err := a.Profiles.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// AuthenticateToken authenticates a token passed outside the Authorization
// header, as browsers do for websockets
func (a *Authenticator) AuthenticateToken(r *http.Request, token string) (*models.Profile, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	clone := r.Clone(r.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return a.Authenticate(clone)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's profile in the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := a.Authenticate(r)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				zap.S().Debugw("unauthorized", "url", r.URL.Path)
				WriteError(w, http.StatusUnauthorized, lifecycle.KindAuthentication, "could not validate credentials")
				return
			}
			zap.S().With(err).Errorw("failed to load authenticated profile", "url", r.URL.Path)
			WriteError(w, http.StatusInternalServerError, lifecycle.KindInternal, "internal server error")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
	})
}

// RequireAdmin rejects authenticated callers that are not admins. It must run
// inside Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := ProfileFromContext(r.Context())
		if p == nil {
			WriteError(w, http.StatusUnauthorized, lifecycle.KindAuthentication, "authentication required")
			return
		}
		if !p.IsAdmin || p.IsBanned {
			WriteError(w, http.StatusForbidden, lifecycle.KindAuthorization, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteError writes the standard error body
func WriteError(w http.ResponseWriter, status int, kind lifecycle.Kind, message string) {
	b, _ := json.Marshal(models.ErrorResponse{Error: string(kind), Message: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
