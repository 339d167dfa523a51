package handlers

import (
	"net/http"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Dispute exists for dependency injection purposes for the dispute handlers
type Dispute struct {
	C *lifecycle.Controller
}

// CreateDisputeHandler opens a dispute on an item the caller is involved in
func (d Dispute) CreateDisputeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDisputeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dispute, err := d.C.OpenDispute(ctx, api.ProfileFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}
