// Package docs Lost & Found Portal API.
//
// Documentation of the campus Lost & Found Portal API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/umt-lostfound/lostfound-api/models"
)

// swagger:route POST /api/auth/login auth login
// Exchanges an email and password for a bearer token.
// responses:
//   200: loginResponse
//   401: errorResponse

// A bearer token and the profile it belongs to.
// swagger:response loginResponse
type loginResponseWrapper struct {
	// in:body
	Body models.LoginResponse
}

// swagger:parameters login
type loginParamsWrapper struct {
	// in:body
	Body models.LoginRequest
}

// swagger:route GET /api/items items listItems
// Lists items, active ones unless a status is given.
// responses:
//   200: itemListResponse
//   400: errorResponse

// A page of items.
// swagger:response itemListResponse
type itemListResponseWrapper struct {
	// in:body
	Body models.ItemListResponse
}

// swagger:route GET /api/items/{item_id} items itemByID
// Gets a single item by ID.
// responses:
//   200: itemResponse
//   404: errorResponse

// A single item.
// swagger:response itemResponse
type itemResponseWrapper struct {
	// in:body
	Body models.Item
}

// swagger:route POST /api/claims claims createClaim
// Files a claim on someone else's active item.
// responses:
//   200: claimResponse
//   400: errorResponse

// A claim request.
// swagger:response claimResponse
type claimResponseWrapper struct {
	// in:body
	Body models.ClaimRequest
}

// swagger:parameters createClaim
type createClaimParamsWrapper struct {
	// in:body
	Body models.CreateClaimRequest
}

// Every failure carries the error kind and a message.
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorResponse
}
