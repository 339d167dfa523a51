package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/umt-lostfound/lostfound-api/api"
	"github.com/umt-lostfound/lostfound-api/auth"
	"github.com/umt-lostfound/lostfound-api/config"
	"github.com/umt-lostfound/lostfound-api/lifecycle"
	"github.com/umt-lostfound/lostfound-api/models"
)

// Auth exists for registration, login and self-service profile handlers
type Auth struct {
	C      *lifecycle.Controller
	Tokens *auth.TokenService
}

// RegisterHandler creates an account and logs it in
func (a Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := a.C.Register(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	zap.S().Infow("user registered", "user_id", profile.ID.Hex())
	a.writeLogin(w, http.StatusOK, profile)
}

// LoginHandler exchanges credentials for an access token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := a.C.Login(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.writeLogin(w, http.StatusOK, profile)
}

func (a Auth) writeLogin(w http.ResponseWriter, status int, profile *models.Profile) {
	token, err := a.Tokens.GenerateToken(profile.ID, profile.Email, profile.IsAdmin)
	if err != nil {
		config.ErrorStatus("failed to generate token", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, status, models.LoginResponse{AccessToken: token, TokenType: "bearer", User: profile})
}

// MeHandler returns the caller's profile
func (a Auth) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.ProfileFromContext(r.Context()))
}

// UpdateMeHandler changes the caller's display name or avatar
func (a Auth) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	profile, err := a.C.UpdateProfile(ctx, api.ProfileFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
