package handlers

import (
	"net/http"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Claim exists for dependency injection purposes for the claim handlers
type Claim struct {
	C *lifecycle.Controller
}

// CreateClaimHandler files a claim on someone else's active item
func (c Claim) CreateClaimHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	claim, err := c.C.CreateClaim(ctx, api.ProfileFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// MyClaimsHandler lists the claims filed by the caller
func (c Claim) MyClaimsHandler(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := paging(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := c.C.ListMyClaims(ctx, api.ProfileFromContext(r.Context()), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
