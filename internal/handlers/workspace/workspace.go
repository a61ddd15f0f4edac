// Package workspace exposes companies, memberships and the invitation
// lifecycle over HTTP.
package workspace

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/invitations"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	logger = log.With().Str("component", "workspace").Logger()
)

type Handler struct {
	db          *gormw.DB
	invitations *invitations.Service
	roles       *storage.RoleCache
}

func NewHandler(db *gormw.DB, invitationService *invitations.Service, roles *storage.RoleCache) *Handler {
	return &Handler{
		db:          db,
		invitations: invitationService,
		roles:       roles,
	}
}

func (h *Handler) RegisterHandlers(rg *gin.RouterGroup, auth *middleware.SessionAuth) {
	companies := rg.Group("/companies", auth.RequireUser())
	{
		companies.POST("", h.handleCreateCompany)
		companies.GET("", h.handleListCompanies)
		companies.GET("/:id/members", h.handleListMembers)
		companies.PATCH("/:id/members/:userID", h.handleUpdateMemberRole)
		companies.POST("/:id/invitations", h.handleIssueInvitation)
		companies.GET("/:id/invitations", h.handleListInvitations)
	}

	invitationRoutes := rg.Group("/invitations")
	{
		invitationRoutes.POST("/:id/resend", auth.RequireUser(), h.handleResendInvitation)
		invitationRoutes.POST("/:id/cancel", auth.RequireUser(), h.handleCancelInvitation)
		// Optional auth: the lifecycle distinguishes "sign in first" from
		// "register first" for anonymous visitors following an email link.
		invitationRoutes.POST("/accept", auth.OptionalUser(), h.handleAcceptInvitation)
	}
}

type createCompanyParams struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) handleCreateCompany(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	params := &createCompanyParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	company := &models.Company{
		Name:      params.Name,
		CreatedBy: actor.ID,
	}
	if err := storage.CreateCompanyWithOwner(h.db, company, actor.ID); err != nil {
		logger.Error().Err(err).Msg("Failed to create company")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": company.ID, "name": company.Name})
}

func (h *Handler) handleListCompanies(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	companies, err := storage.ListCompaniesForUser(h.db, actor.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list companies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (h *Handler) handleListMembers(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Any member may see the roster.
	if _, err := storage.GetMembership(h.db, actor.ID, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not_a_member"})
			return
		}
		logger.Error().Err(err).Msg("Failed to check membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	memberships, err := storage.ListMembershipsByCompany(h.db, companyID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list members")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": memberships})
}

type updateRoleParams struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *Handler) handleUpdateMemberRole(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	params := &updateRoleParams{}
	if err := c.ShouldBindJSON(params); err != nil || !params.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}

	// Only owners reassign roles.
	actorMembership, err := storage.GetMembership(h.db, actor.ID, companyID)
	if err != nil || actorMembership.Role != models.RoleOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "owner_required"})
		return
	}

	membership, err := storage.GetMembership(h.db, userID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		logger.Error().Err(err).Msg("Failed to load membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	if err := storage.UpdateMembershipRole(h.db, membership, params.Role); err != nil {
		logger.Error().Err(err).Msg("Failed to update role")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	// Keep the permission cache honest.
	h.roles.Invalidate(userID, companyID)

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": params.Role})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}
