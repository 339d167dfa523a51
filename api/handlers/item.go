package handlers

import (
	"net/http"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Item exists for dependency injection purposes for the item handlers
type Item struct {
	C *lifecycle.Controller
}

// itemQuery reads the browse filters shared by the public and admin listings
func itemQuery(w http.ResponseWriter, r *http.Request) (models.ItemQuery, bool) {
	v := r.URL.Query()
	q := models.ItemQuery{
		Type:     models.ItemType(v.Get("type")),
		Category: models.ItemCategory(v.Get("category")),
		Status:   models.ItemStatus(v.Get("status")),
		Location: v.Get("location"),
		Urgency:  models.Urgency(v.Get("urgency")),
		Search:   v.Get("search"),
	}
	var ok bool
	if q.HasReward, ok = queryBool(w, r, "has_reward"); !ok {
		return q, false
	}
	if q.Page, q.PerPage, ok = paging(w, r); !ok {
		return q, false
	}
	return q, true
}

// ItemsHandler returns a filtered page of items
func (i Item) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	q, ok := itemQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp, err := i.C.ListItems(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ItemByIDHandler returns a single item
func (i Item) ItemByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := i.C.GetItem(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItemHandler reports a lost or found item owned by the caller
func (i Item) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := i.C.CreateItem(ctx, api.ProfileFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItemHandler applies a partial update from the owner or an admin
func (i Item) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item_id")
	if !ok {
		return
	}
	var req models.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	item, err := i.C.UpdateItem(ctx, api.ProfileFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
