package handlers

import (
	"net/http"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
	"github.com/umt-lostfound/lostfound-api/notify"
)

// Admin exists for the admin console handlers. Every route is mounted behind
// api.RequireAdmin and the controller checks the role again.
type Admin struct {
	C          *lifecycle.Controller
	Metrics    *api.MetricsCollector
	Dispatcher *notify.Dispatcher
}

// StatsHandler returns platform wide counters
func (a Admin) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := a.C.AdminStats(ctx, api.ProfileFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ItemsHandler lists items in any status, optionally only flagged ones
func (a Admin) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	q, ok := itemQuery(w, r)
	if !ok {
		return
	}
	flagged, ok := queryBool(w, r, "flagged_only")
	if !ok {
		return
	}
	q.FlaggedOnly = flagged != nil && *flagged
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.C.AdminListItems(ctx, api.ProfileFromContext(r.Context()), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ItemStatusHandler moves an item to a new status
func (a Admin) ItemStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	var req models.ItemStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := a.C.SetItemStatus(ctx, api.ProfileFromContext(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ModerateItemHandler applies a moderation action to one item
func (a Admin) ModerateItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	var req models.ModerateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := a.C.ModerateItem(ctx, api.ProfileFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ClaimsHandler lists claims, optionally by status
func (a Admin) ClaimsHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	status := models.ClaimStatus(r.URL.Query().Get("status"))
	resp, err := a.C.AdminListClaims(ctx, api.ProfileFromContext(r.Context()), status, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DecideClaimHandler approves, rejects or completes a claim
func (a Admin) DecideClaimHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "claim_id")
	if !ok {
		return
	}
	var req models.DecideClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claim, err := a.C.DecideClaim(ctx, api.ProfileFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// UsersHandler searches profiles by name or email
func (a Admin) UsersHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.C.ListUsers(ctx, api.ProfileFromContext(r.Context()), r.URL.Query().Get("search"), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UserRoleHandler grants or revokes admin rights
func (a Admin) UserRoleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	var req models.RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := a.C.SetUserRole(ctx, api.ProfileFromContext(r.Context()), id, req.IsAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UserBanHandler bans or unbans a user
func (a Admin) UserBanHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	var req models.BanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := a.C.SetUserBan(ctx, api.ProfileFromContext(r.Context()), id, req.IsBanned)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DisputesHandler lists disputes by status and priority
func (a Admin) DisputesHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v := r.URL.Query()
	resp, err := a.C.ListDisputes(ctx, api.ProfileFromContext(r.Context()),
		models.DisputeStatus(v.Get("status")), v.Get("priority"), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateDisputeHandler moves a dispute through investigation
func (a Admin) UpdateDisputeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "dispute_id")
	if !ok {
		return
	}
	var req models.UpdateDisputeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dispute, err := a.C.UpdateDispute(ctx, api.ProfileFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}

// FlaggedHandler returns the flagged content queue
func (a Admin) FlaggedHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v := r.URL.Query()
	resp, err := a.C.ListFlagged(ctx, api.ProfileFromContext(r.Context()), v.Get("type"), v.Get("severity"), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// FlaggedActionHandler approves, removes or escalates flagged content
func (a Admin) FlaggedActionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "content_id")
	if !ok {
		return
	}
	var req models.FlaggedActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	out, err := a.C.HandleFlagged(ctx, api.ProfileFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AnalyticsHandler returns trends over ?timeframe=1d|7d|30d|90d
func (a Admin) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.C.Analytics(ctx, api.ProfileFromContext(r.Context()), r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BulkActionHandler applies one moderation action to many items
func (a Admin) BulkActionHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BulkActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.C.BulkModerate(ctx, api.ProfileFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ActionsHandler returns the admin action ledger
func (a Admin) ActionsHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := a.C.ListAdminActions(ctx, api.ProfileFromContext(r.Context()), r.URL.Query().Get("content_type"), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MetricsHandler returns request metrics per route
func (a Admin) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Requests             api.MetricsSummary `json:"requests"`
		NotificationsDropped int64              `json:"notificationsDropped"`
	}{}
	if a.Metrics != nil {
		resp.Requests = a.Metrics.Summary()
	}
	if a.Dispatcher != nil {
		resp.NotificationsDropped = a.Dispatcher.Dropped()
	}
	writeJSON(w, http.StatusOK, resp)
}
