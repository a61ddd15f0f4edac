package workspace

import (
	"errors"
	"net/http"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin"

	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/invitations"
	"github.com/teamspace-app/teamspace/internal/models"
)

type issueInvitationParams struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) handleIssueInvitation(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	params := &issueInvitationParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}
	if err := checkmail.ValidateFormat(params.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
		return
	}

	invitation, err := h.invitations.Issue(c.Request.Context(), params.Email, companyID, actor)
	if err != nil {
		invitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitationJSON(invitation))
}

func (h *Handler) handleListInvitations(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.invitations.List(companyID, actor)
	if err != nil {
		invitationError(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, invitationJSON(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"invitations": out})
}

func (h *Handler) handleResendInvitation(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitations.Resend(c.Request.Context(), id, actor)
	if err != nil {
		invitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitationJSON(invitation))
}

func (h *Handler) handleCancelInvitation(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitations.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		invitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitationJSON(invitation))
}

func (h *Handler) handleAcceptInvitation(c *gin.Context) {
	// May be nil; the lifecycle decides between auth_required and
	// registration_required.
	actor := middleware.CurrentUser(c)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
		return
	}

	invitation, err := h.invitations.Accept(c.Request.Context(), token, actor)
	if err != nil {
		invitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitationJSON(invitation))
}

// invitationError maps lifecycle sentinels onto HTTP responses. Unknown
// errors are logged and returned as a generic failure so internals never
// leak to the client.
func invitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invitations.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	case errors.Is(err, invitations.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "already_member"})
	case errors.Is(err, invitations.ErrDuplicatePending):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_pending"})
	case errors.Is(err, invitations.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, invitations.ErrAlreadyAccepted):
		c.JSON(http.StatusConflict, gin.H{"error": "already_accepted"})
	case errors.Is(err, invitations.ErrCancelled):
		c.JSON(http.StatusGone, gin.H{"error": "cancelled"})
	case errors.Is(err, invitations.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "expired"})
	case errors.Is(err, invitations.ErrRegistrationRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "registration_required"})
	case errors.Is(err, invitations.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth_required"})
	case errors.Is(err, invitations.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "email_not_verified"})
	case errors.Is(err, invitations.ErrDispatchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "dispatch_failed"})
	default:
		logger.Error().Err(err).Msg("Invitation operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

func invitationJSON(invitation *models.Invitation) gin.H {
	return gin.H{
		"id":          invitation.ID,
		"email":       invitation.Email,
		"company_id":  invitation.CompanyID,
		"status":      invitation.Status,
		"expires_at":  invitation.ExpiresAt,
		"created_at":  invitation.CreatedAt,
		"accepted_at": invitation.AcceptedAt,
	}
}
