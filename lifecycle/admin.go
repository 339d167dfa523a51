package lifecycle

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/umt-lostfound/lostfound-api/databases"
	"github.com/umt-lostfound/lostfound-api/models"
)

var timeframes = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// ListUsers returns profiles whose name or email contains search
func (c *Controller) ListUsers(ctx context.Context, actor *models.Profile, search string, page, perPage int) (*models.ProfileListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if search != "" {
		filter["$or"] = bson.A{
			bson.M{"email": containsInsensitive(search)},
			bson.M{"full_name": containsInsensitive(search)},
		}
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	total, err := c.Profiles.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count users", err)
	}
	users, err := c.Profiles.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list users", err)
	}
	return &models.ProfileListResponse{Users: users, Total: total, Page: page, PerPage: perPage}, nil
}

// SetUserRole grants or revokes admin rights. Admins cannot change their own role.
func (c *Controller) SetUserRole(ctx context.Context, actor *models.Profile, userID primitive.ObjectID, isAdmin bool) (*models.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, newError(KindConflict, "you cannot change your own role")
	}
	action := "revoke_admin"
	if isAdmin {
		action = "grant_admin"
	}
	return c.setUserFlag(ctx, actor, userID, "is_admin", isAdmin, action)
}

// SetUserBan bans or unbans a user. Admins cannot ban themselves.
func (c *Controller) SetUserBan(ctx context.Context, actor *models.Profile, userID primitive.ObjectID, banned bool) (*models.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, newError(KindConflict, "you cannot ban yourself")
	}
	action := "unban_user"
	if banned {
		action = "ban_user"
	}
	return c.setUserFlag(ctx, actor, userID, "is_banned", banned, action)
}

func (c *Controller) setUserFlag(ctx context.Context, actor *models.Profile, userID primitive.ObjectID, field string, value bool, action string) (*models.Profile, error) {
	res, err := c.Profiles.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{field: value, "updated_at": c.now()}})
	if err != nil {
		return nil, internalError("failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return nil, newError(KindNotFound, "user not found")
	}
	c.record(ctx, actor.ID, action, models.ContentTypeUser, userID.Hex(), "")
	return c.Profile(ctx, userID)
}

// AdminStats returns the platform-wide counters
func (c *Controller) AdminStats(ctx context.Context, actor *models.Profile) (*models.AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var stats models.AdminStats
	counts := []struct {
		dst   *int64
		count func(context.Context, interface{}) (int64, error)
		f     bson.M
	}{
		{&stats.TotalUsers, c.Profiles.CountDocuments, bson.M{}},
		{&stats.TotalItems, c.Items.CountDocuments, bson.M{}},
		{&stats.ActiveItems, c.Items.CountDocuments, bson.M{"status": models.ItemStatusActive}},
		{&stats.ResolvedItems, c.Items.CountDocuments, bson.M{"status": models.ItemStatusResolved}},
		{&stats.PendingClaims, c.Claims.CountDocuments, bson.M{"status": models.ClaimStatusPending}},
	}
	for _, cnt := range counts {
		n, err := cnt.count(ctx, cnt.f)
		if err != nil {
			return nil, internalError("failed to compute stats", err)
		}
		*cnt.dst = n
	}
	stats.SuccessRate = percent(stats.ResolvedItems, stats.TotalItems)
	return &stats, nil
}

// Analytics returns activity over the timeframe (1d, 7d, 30d or 90d; default 7d)
func (c *Controller) Analytics(ctx context.Context, actor *models.Profile, timeframe string) (*models.Analytics, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if timeframe == "" {
		timeframe = "7d"
	}
	window, ok := timeframes[timeframe]
	if !ok {
		return nil, newError(KindValidation, "timeframe: must be one of 1d, 7d, 30d, 90d")
	}
	since := bson.M{"$gte": c.now().Add(-window)}

	out := &models.Analytics{Timeframe: timeframe}
	counts := []struct {
		dst   *int64
		count func(context.Context, interface{}) (int64, error)
		f     bson.M
	}{
		{&out.NewUsers, c.Profiles.CountDocuments, bson.M{"created_at": since}},
		{&out.NewItems, c.Items.CountDocuments, bson.M{"created_at": since}},
		{&out.LostItems, c.Items.CountDocuments, bson.M{"created_at": since, "type": models.ItemTypeLost}},
		{&out.FoundItems, c.Items.CountDocuments, bson.M{"created_at": since, "type": models.ItemTypeFound}},
		{&out.NewClaims, c.Claims.CountDocuments, bson.M{"created_at": since}},
		{&out.ApprovedClaims, c.Claims.CountDocuments, bson.M{"created_at": since, "status": models.ClaimStatusApproved}},
		{&out.PlatformHealth.TotalItems, c.Items.CountDocuments, bson.M{}},
		{&out.PlatformHealth.ActiveItems, c.Items.CountDocuments, bson.M{"status": models.ItemStatusActive}},
		{&out.PlatformHealth.FlaggedItems, c.Items.CountDocuments, bson.M{"flagged": true}},
	}
	for _, cnt := range counts {
		n, err := cnt.count(ctx, cnt.f)
		if err != nil {
			return nil, internalError("failed to compute analytics", err)
		}
		*cnt.dst = n
	}
	health := out.PlatformHealth
	out.PlatformHealth.HealthScore = math.Max(0, 100-percent(health.FlaggedItems, max(health.TotalItems, 1)))

	categories, err := c.Items.CountByCategory(ctx, bson.M{"created_at": since})
	if err != nil {
		return nil, internalError("failed to compute analytics", err)
	}
	out.Categories = categories
	return out, nil
}

// ListAdminActions returns the admin action ledger, newest first
func (c *Controller) ListAdminActions(ctx context.Context, actor *models.Profile, contentType string, page, perPage int) (*models.AdminActionListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if contentType != "" {
		filter["content_type"] = contentType
	}
	page, perPage = Paging(page, perPage, DefaultAdminPerPage, MaxAdminPerPage)
	total, err := c.Actions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, internalError("failed to count admin actions", err)
	}
	actions, err := c.Actions.Find(ctx, filter, databases.Paginate(page, perPage))
	if err != nil {
		return nil, internalError("failed to list admin actions", err)
	}
	return &models.AdminActionListResponse{Actions: actions, Total: total, Page: page, PerPage: perPage}, nil
}

// percent returns part/total as a percentage rounded to one decimal
func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
