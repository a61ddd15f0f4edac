package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	oauth2RequestClient = http.DefaultClient
)

const oauthStateCookie = "teamspace_oauth_state"

// handleGoogleLogin starts the SSO round trip. The random state is pinned
// to the browser in a short-lived cookie and checked on callback.
func (h *Handler) handleGoogleLogin(c *gin.Context) {
	if !h.config.Google.enabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "sso_disabled"})
		return
	}

	state := uuid.New().String()
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.config.Google.oauth2Config().AuthCodeURL(state))
}

type googleCallbackParams struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

func (h *Handler) handleGoogleCallback(c *gin.Context) {
	params := googleCallbackParams{}
	if err := c.ShouldBind(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	// 1. Check state against the cookie set at login time
	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil || cookieState == "" || cookieState != params.State {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}
	// Remove state after use to prevent replay attacks
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, oauth2RequestClient)

	// 2. Token exchange
	tok, err := h.config.Google.oauth2Config().Exchange(ctx, params.Code)
	if err != nil {
		// This should never happen unless the requester is cheating.
		logger.Error().Err(err).Msg("Failed to exchange token with Google")
		c.JSON(http.StatusBadRequest, gin.H{"error": "token_exchange_failed"})
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		logger.Error().Msg("No id_token field in oauth2 token")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_token_response"})
		return
	}

	// No need to verify the id token because we requested the token directly from Google.

	// 3. Extract email, name, picture from id token
	idToken, err := jwt.ParseInsecure([]byte(rawIDToken))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse ID token")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id_token"})
		return
	}

	var email, name, picture string
	if err := idToken.Get("email", &email); err != nil {
		logger.Error().Err(err).Msg("Failed to extract email from ID token")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id_token_claims"})
		return
	}
	if err := idToken.Get("name", &name); err != nil {
		logger.Error().Err(err).Msg("Failed to extract name from ID token")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id_token_claims"})
		return
	}
	if err := idToken.Get("picture", &picture); err != nil {
		logger.Error().Err(err).Msg("Failed to extract picture from ID token")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id_token_claims"})
		return
	}

	// 4. Find the user; SSO does not auto-provision accounts
	user, err := storage.GetUserByEmail(h.db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not_registered"})
			return
		}
		logger.Error().Err(err).Msg("Database error during Google login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	// 5. Sync profile drift; Google asserting the address counts as
	// verification.
	updated := false
	if user.Name != name {
		user.Name = name
		updated = true
	}
	if user.Picture != picture {
		user.Picture = picture
		updated = true
	}
	if !user.EmailVerified {
		user.EmailVerified = true
		user.VerifyToken = ""
		user.VerifyTokenExpiresAt = nil
		updated = true
	}
	if updated {
		if err := storage.SaveUser(h.db, user); err != nil {
			logger.Error().Err(err).Msg("Failed to update user data")
		}
	}

	if err := h.startSession(c, user); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}
