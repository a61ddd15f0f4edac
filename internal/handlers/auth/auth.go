// Package auth implements registration, email verification and login
// (password and Google SSO) backed by database sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	logger = log.With().Str("component", "auth").Logger()
)

const verifyTokenTTL = 24 * time.Hour

// VerificationMailer is the slice of the mail service this package needs.
type VerificationMailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) (string, error)
}

type Handler struct {
	config *Config
	db     *gormw.DB
	mailer VerificationMailer
	clock  clockwork.Clock
}

func NewHandler(config *Config, db *gormw.DB, mailer VerificationMailer) *Handler {
	config.applyDefaults()
	return &Handler{
		config: config,
		db:     db,
		mailer: mailer,
		clock:  clockwork.NewRealClock(),
	}
}

func (h *Handler) RegisterHandlers(rg *gin.RouterGroup) {
	authRoutes := rg.Group("/auth")
	{
		authRoutes.POST("/register", h.handleRegister)
		authRoutes.POST("/verify", h.handleVerify)
		authRoutes.POST("/login", h.handleLogin)
		authRoutes.POST("/logout", h.handleLogout)
	}

	ssoRoutes := rg.Group("/sso")
	{
		ssoRoutes.GET("/google/login", h.handleGoogleLogin)
		ssoRoutes.GET("/google/callback", h.handleGoogleCallback)
	}
}

type registerParams struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	hasLetter := false
	hasNumber := false
	for _, char := range password {
		switch {
		case char >= '0' && char <= '9':
			hasNumber = true
		case (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasNumber {
		return errors.New("password must contain at least one letter and one number")
	}
	return nil
}

func (h *Handler) handleRegister(c *gin.Context) {
	params := &registerParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
		return
	}
	if err := validatePassword(params.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weak_password", "detail": err.Error()})
		return
	}

	verifyToken, err := newVerifyToken()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	expires := h.clock.Now().Add(verifyTokenTTL)
	user := &models.User{
		Name:                 params.Name,
		Email:                email,
		VerifyToken:          verifyToken,
		VerifyTokenExpiresAt: &expires,
	}
	if err := user.SetPassword(params.Password); err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	if err := storage.CreateUser(h.db, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
			return
		}
		logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	// The account exists either way; a lost verification email can be
	// recovered from, so only log dispatch failures.
	if _, err := h.mailer.SendVerificationEmail(c.Request.Context(), email, verifyToken); err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Failed to send verification email")
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

type verifyParams struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) handleVerify(c *gin.Context) {
	params := &verifyParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	user, err := storage.GetUserByVerifyToken(h.db, params.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_token"})
			return
		}
		logger.Error().Err(err).Msg("Failed to look up verification token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	if user.VerifyTokenExpiresAt == nil || !user.VerifyTokenExpiresAt.After(h.clock.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token_expired"})
		return
	}

	user.EmailVerified = true
	user.VerifyToken = ""
	user.VerifyTokenExpiresAt = nil
	if err := storage.SaveUser(h.db, user); err != nil {
		logger.Error().Err(err).Msg("Failed to mark email verified")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

type loginParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) handleLogin(c *gin.Context) {
	params := &loginParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	user, err := storage.GetUserByEmail(h.db, params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Generic message for security reasons.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		logger.Error().Err(err).Msg("Database error during login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	if !user.CheckPassword(params.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	if err := h.startSession(c, user); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"email_verified": user.EmailVerified,
	})
}

func (h *Handler) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := storage.DeleteSessionByToken(h.db, token); err != nil {
			logger.Error().Err(err).Msg("Failed to delete session")
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) startSession(c *gin.Context, user *models.User) error {
	ttl := time.Duration(h.config.SessionTTLHours) * time.Hour
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: h.clock.Now().Add(ttl),
	}
	if err := storage.CreateSession(h.db, session); err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookie, session.Token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

func newVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
