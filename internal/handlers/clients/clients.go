// Package clients implements the company-scoped CRM client table,
// including the per-field inline edit endpoint.
package clients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	logger = log.With().Str("component", "clients").Logger()
)

type Handler struct {
	db *gormw.DB
}

func NewHandler(db *gormw.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterHandlers(rg *gin.RouterGroup, auth *middleware.SessionAuth) {
	companies := rg.Group("/companies", auth.RequireUser())
	{
		companies.POST("/:id/clients", h.handleCreateClient)
		companies.GET("/:id/clients", h.handleListClients)
	}

	clientRoutes := rg.Group("/clients", auth.RequireUser())
	{
		clientRoutes.PATCH("/:id", h.handleUpdateClient)
		clientRoutes.DELETE("/:id", h.handleDeleteClient)
	}
}

type createClientParams struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (h *Handler) handleCreateClient(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.requireMember(c, actor.ID, companyID) {
		return
	}

	params := &createClientParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}
	if params.Email != "" {
		if err := checkmail.ValidateFormat(params.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
			return
		}
	}

	client := &models.Client{
		CompanyID: companyID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Notes:     params.Notes,
	}
	if err := storage.CreateClient(h.db, client); err != nil {
		logger.Error().Err(err).Msg("Failed to create client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *Handler) handleListClients(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.requireMember(c, actor.ID, companyID) {
		return
	}

	clients, err := storage.ListClientsByCompany(h.db, companyID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list clients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// updateClientParams uses pointers so the inline-edit table can send just
// the one field that changed.
type updateClientParams struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (h *Handler) handleUpdateClient(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	client, ok := h.loadClient(c, actor.ID)
	if !ok {
		return
	}

	params := &updateClientParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	if params.Name != nil {
		if *params.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_name"})
			return
		}
		client.Name = *params.Name
	}
	if params.Email != nil {
		if *params.Email != "" {
			if err := checkmail.ValidateFormat(*params.Email); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email"})
				return
			}
		}
		client.Email = *params.Email
	}
	if params.Phone != nil {
		client.Phone = *params.Phone
	}
	if params.Notes != nil {
		client.Notes = *params.Notes
	}

	if err := storage.SaveClient(h.db, client); err != nil {
		logger.Error().Err(err).Msg("Failed to update client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *Handler) handleDeleteClient(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	client, ok := h.loadClient(c, actor.ID)
	if !ok {
		return
	}

	if err := storage.DeleteClient(h.db, client.ID); err != nil {
		logger.Error().Err(err).Msg("Failed to delete client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// loadClient fetches the client and checks the actor belongs to its
// company. A client in a foreign company reads as not found.
func (h *Handler) loadClient(c *gin.Context, actorID uint) (*models.Client, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	client, err := storage.GetClientByID(h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return nil, false
		}
		logger.Error().Err(err).Msg("Failed to load client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return nil, false
	}

	if _, err := storage.GetMembership(h.db, actorID, client.CompanyID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return nil, false
	}
	return client, true
}

func (h *Handler) requireMember(c *gin.Context, userID, companyID uint) bool {
	if _, err := storage.GetMembership(h.db, userID, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not_a_member"})
			return false
		}
		logger.Error().Err(err).Msg("Failed to check membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}
