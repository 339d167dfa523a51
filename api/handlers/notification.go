package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/notify"
)

// Notification exists for the inbox handlers and the notification websocket
type Notification struct {
	C    *lifecycle.Controller
	Hub  *notify.Hub
	Auth *api.Authenticator
}

// NotificationsHandler returns a page of the caller's notifications
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	unreadOnly, ok := queryBool(w, r, "unread_only")
	if !ok {
		return
	}
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := n.C.ListNotifications(ctx, api.ProfileFromContext(r.Context()), unreadOnly != nil && *unreadOnly, page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationReadHandler marks one of the caller's notifications as read
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notification_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.C.MarkNotificationRead(ctx, api.ProfileFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// WebsocketHandler streams the caller's new notifications. Browsers cannot set
// headers on websocket requests, so the token may also come as ?token=.
func (n Notification) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	profile, err := n.Auth.AuthenticateToken(r, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			api.WriteError(w, http.StatusUnauthorized, lifecycle.KindAuthentication, "could not validate credentials")
			return
		}
		zap.S().With(err).Error("failed to authenticate websocket")
		api.WriteError(w, http.StatusInternalServerError, lifecycle.KindInternal, "internal server error")
		return
	}
	if profile.IsBanned {
		api.WriteError(w, http.StatusForbidden, lifecycle.KindAuthorization, "your account has been banned")
		return
	}
	n.Hub.Serve(w, r, profile.ID.Hex())
}
