package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/auth"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
	"github.com/rs/zerolog/log"
)

// LoginHandler godoc
// @Summary Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body UserLogin true "username and password"
// @Success 200 {object} LoginResult
// @Failure 400 {array} ValidationError
// @Failure 401 {string} string "Unauthorized"
// @Failure 429 {string} string "Too many requests"
// @Router /login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials UserLogin
	if !decodeAndValidate(w, r, &credentials) {
		return
	}

	user, err := userRepo.GetByUsername(r.Context(), credentials.Username)
	if err != nil {
		if !errors.Is(err, repo.ErrUserNotFound) {
			log.Error().Err(err).Msg("failed to look up user")
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, credentials.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := tokens.GenerateToken(user)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", user.Username).Msg("user logged in")
	respond(w, http.StatusOK, LoginResult{Token: token, ExpiresIn: int(tokens.TTL().Seconds())})
}

// LogoutHandler godoc
// @Summary Revoke the current token
// @Tags auth
// @Success 204 "No Content"
// @Failure 401 {string} string "Unauthorized"
// @Router /logout [post]
// @Security BearerAuth
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := GetClaimsFromContext(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	until := time.Now().Add(tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := revoker.Revoke(r.Context(), claims.ID, until); err != nil {
		log.Error().Err(err).Msg("failed to revoke token")
		http.Error(w, "could not revoke token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
