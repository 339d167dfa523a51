package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/config"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 1 << 20

var statusByKind = map[lifecycle.Kind]int{
	lifecycle.KindValidation:     http.StatusBadRequest,
	lifecycle.KindAuthentication: http.StatusUnauthorized,
	lifecycle.KindAuthorization:  http.StatusForbidden,
	lifecycle.KindNotFound:       http.StatusNotFound,
	lifecycle.KindConflict:       http.StatusBadRequest,
	lifecycle.KindState:          http.StatusBadRequest,
	lifecycle.KindDuplicate:      http.StatusBadRequest,
	lifecycle.KindInternal:       http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// writeError maps a lifecycle error onto its status code. Internal errors are
// logged with their cause and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := lifecycle.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := "internal server error"
	var lerr *lifecycle.Error
	if errors.As(err, &lerr) && kind != lifecycle.KindInternal {
		message = lerr.Message
	}
	if status >= 500 {
		zap.S().With(err).Errorw("request failed",
			"requestId", api.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path)
	}
	api.WriteError(w, status, kind, message)
}

// decodeJSON reads the request body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return false
	}
	return true
}

// pathID parses the named route variable as an object id
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := mux.Vars(r)[name]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		config.ErrorStatus(fmt.Sprintf("failed to get objectID from Hex %q", raw), http.StatusBadRequest, w, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter. Absent values yield 0.
func queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		config.ErrorStatus(fmt.Sprintf("query parameter %s must be an integer", key), http.StatusBadRequest, w, err)
		return 0, false
	}
	return n, true
}

// queryBool reads an optional boolean query parameter. Absent values yield nil.
func queryBool(w http.ResponseWriter, r *http.Request, key string) (*bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		config.ErrorStatus(fmt.Sprintf("query parameter %s must be a boolean", key), http.StatusBadRequest, w, err)
		return nil, false
	}
	return &b, true
}

// paging reads page and per_page
func paging(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	if page, ok = queryInt(w, r, "page"); !ok {
		return 0, 0, false
	}
	if perPage, ok = queryInt(w, r, "per_page"); !ok {
		return 0, 0, false
	}
	return page, perPage, true
}
