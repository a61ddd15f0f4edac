// Package projects implements the company project board: CRUD plus the
// status-move endpoint behind the Kanban columns.
package projects

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/handlers/middleware"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	logger = log.With().Str("component", "projects").Logger()
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
		companies.POST("/:id/projects", h.handleCreateProject)
		companies.GET("/:id/projects", h.handleListProjects)
	}

	projectRoutes := rg.Group("/projects", auth.RequireUser())
	{
		projectRoutes.PATCH("/:id", h.handleUpdateProject)
		projectRoutes.PATCH("/:id/status", h.handleMoveProject)
		projectRoutes.DELETE("/:id", h.handleDeleteProject)
	}
}

type createProjectParams struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ClientID    *uint  `json:"client_id"`
}

func (h *Handler) handleCreateProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.requireMember(c, actor.ID, companyID) {
		return
	}

	params := &createProjectParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	project := &models.Project{
		CompanyID:   companyID,
		ClientID:    params.ClientID,
		Name:        params.Name,
		Description: params.Description,
		Status:      models.ProjectBacklog,
	}
	if err := storage.CreateProject(h.db, project); err != nil {
		logger.Error().Err(err).Msg("Failed to create project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *Handler) handleListProjects(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	companyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.requireMember(c, actor.ID, companyID) {
		return
	}

	projects, err := storage.ListProjectsByCompany(h.db, companyID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list projects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type updateProjectParams struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ClientID    *uint   `json:"client_id"`
}

func (h *Handler) handleUpdateProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	project, ok := h.loadProject(c, actor.ID)
	if !ok {
		return
	}

	params := &updateProjectParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}

	if params.Name != nil {
		if *params.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_name"})
			return
		}
		project.Name = *params.Name
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	if params.ClientID != nil {
		project.ClientID = params.ClientID
	}

	if err := storage.SaveProject(h.db, project); err != nil {
		logger.Error().Err(err).Msg("Failed to update project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, project)
}

type moveProjectParams struct {
	Status   models.ProjectStatus `json:"status" binding:"required"`
	Position int                  `json:"position"`
}

// handleMoveProject is the board move: drop a card into a column. The move
// is a plain status+position write; repeating it is harmless, which is what
// optimistic UI clients need when they retry after a refetch.
func (h *Handler) handleMoveProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	project, ok := h.loadProject(c, actor.ID)
	if !ok {
		return
	}

	params := &moveProjectParams{}
	if err := c.ShouldBindJSON(params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_parameters"})
		return
	}
	if !params.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	project.Status = params.Status
	project.Position = params.Position
	if err := storage.SaveProject(h.db, project); err != nil {
		logger.Error().Err(err).Msg("Failed to move project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) handleDeleteProject(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	project, ok := h.loadProject(c, actor.ID)
	if !ok {
		return
	}

	if err := storage.DeleteProject(h.db, project.ID); err != nil {
		logger.Error().Err(err).Msg("Failed to delete project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) loadProject(c *gin.Context, actorID uint) (*models.Project, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	project, err := storage.GetProjectByID(h.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return nil, false
		}
		logger.Error().Err(err).Msg("Failed to load project")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return nil, false
	}

	if _, err := storage.GetMembership(h.db, actorID, project.CompanyID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return nil, false
	}
	return project, true
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
