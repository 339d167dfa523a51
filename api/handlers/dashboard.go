package handlers

import (
	"net/http"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
)

// Dashboard exists for dependency injection purposes for the dashboard handler
type Dashboard struct {
	C *lifecycle.Controller
}

// DashboardHandler returns the caller's stats, recent items and incoming claims
func (d Dashboard) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	data, err := d.C.Dashboard(ctx, api.ProfileFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
