package api

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"startup-foundry/internal/models"
	"startup-foundry/internal/services"
	"startup-foundry/internal/storage"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	jobService        *services.JobService
	generationService *services.GenerationService
	safetyService     *services.SafetyService
	matchService      *services.MatchService
	mediaService      *services.MediaService
	deployService     *services.DeployService
	archiveService    *services.ArchiveService
	projectStore      storage.ProjectStore
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	jobService *services.JobService,
	generationService *services.GenerationService,
	safetyService *services.SafetyService,
	matchService *services.MatchService,
	mediaService *services.MediaService,
	deployService *services.DeployService,
	archiveService *services.ArchiveService,
	projectStore storage.ProjectStore,
) *Handlers {
	return &Handlers{
		jobService:        jobService,
		generationService: generationService,
		safetyService:     safetyService,
		matchService:      matchService,
		mediaService:      mediaService,
		deployService:     deployService,
		archiveService:    archiveService,
		projectStore:      projectStore,
	}
}

// GenerateProjectHandler handles POST /api/projects/generate
func (h *Handlers) GenerateProjectHandler(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Screen the prompt before spending any pipeline work on it
	if h.safetyService != nil {
		result := h.safetyService.Sanitize(c.Request.Context(), req.Prompt)
		if !result.Allowed {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "prompt rejected",
				"reason": result.Reason,
			})
			return
		}
	}

	job := h.jobService.Create(req.Prompt)

	// Start async generation
	go h.generationService.Run(job.ID, req.Prompt)

	c.JSON(http.StatusAccepted, models.JobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// GetJobStatusHandler handles GET /api/jobs/:jobId
func (h *Handlers) GetJobStatusHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.jobService.Get(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetProjectHandler handles GET /api/projects/:projectId
func (h *Handlers) GetProjectHandler(c *gin.Context) {
	projectID := c.Param("projectId")

	project, err := h.projectStore.Get(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		log.Printf("[API] ERROR: failed to load project %s: %v", projectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// DownloadArchiveHandler handles GET /api/projects/:projectId/archive
func (h *Handlers) DownloadArchiveHandler(c *gin.Context) {
	projectID := c.Param("projectId")

	project, err := h.projectStore.Get(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	// Prefer the object store URL when the archive was uploaded
	if project.ArchiveURL != "" {
		c.Redirect(http.StatusFound, project.ArchiveURL)
		return
	}

	path := h.archiveService.ArchivePath(projectID)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
		return
	}

	c.FileAttachment(path, project.Name+".zip")
}

// MatchHandler handles POST /api/founders/match
func (h *Handlers) MatchHandler(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matches, err := h.matchService.Match(c.Request.Context(), req)
	if err != nil {
		log.Printf("[API] ERROR: founder matching failed: %v", err)
		c.JSON(errorStatus(err), gin.H{"error": "failed to compute matches"})
		return
	}

	c.JSON(http.StatusOK, models.MatchResponse{Matches: matches})
}

// SanitizeHandler handles POST /api/prompts/sanitize
func (h *Handlers) SanitizeHandler(c *gin.Context) {
	var req models.SanitizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.safetyService.Sanitize(c.Request.Context(), req.Prompt)
	c.JSON(http.StatusOK, result)
}

// GenerateLogoHandler handles POST /api/branding/logo
func (h *Handlers) GenerateLogoHandler(c *gin.Context) {
	var req models.BrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.mediaService.GenerateLogo(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Printf("[API] ERROR: logo generation failed: %v", err)
		c.JSON(errorStatus(err), gin.H{"error": "failed to generate logo"})
		return
	}

	c.JSON(http.StatusOK, asset)
}

// GeneratePromoVideoHandler handles POST /api/branding/promo-video
func (h *Handlers) GeneratePromoVideoHandler(c *gin.Context) {
	var req models.BrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required"})
		return
	}

	asset, err := h.mediaService.GeneratePromoVideo(c.Request.Context(), req.Prompt, req.ImageURL)
	if err != nil {
		log.Printf("[API] ERROR: promo video generation failed: %v", err)
		c.JSON(errorStatus(err), gin.H{"error": "failed to generate promo video"})
		return
	}

	c.JSON(http.StatusOK, asset)
}

// DeployProjectHandler handles POST /api/projects/:projectId/deploy
func (h *Handlers) DeployProjectHandler(c *gin.Context) {
	projectID := c.Param("projectId")

	var req models.DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projectStore.Get(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	deployment, err := h.deployService.Deploy(c.Request.Context(), req.Provider, project)
	if err != nil {
		log.Printf("[API] ERROR: deployment to %s failed: %v", req.Provider, err)
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	project.Deployment = deployment
	if err := h.projectStore.Put(c.Request.Context(), project); err != nil {
		log.Printf("[API] WARNING: failed to persist deployment for project %s: %v", projectID, err)
	}

	c.JSON(http.StatusOK, deployment)
}

// errorStatus maps pipeline error kinds to HTTP status codes
func errorStatus(err error) int {
	switch services.KindOf(err) {
	case services.ErrKindNotFound:
		return http.StatusNotFound
	case services.ErrKindConfigMissing:
		return http.StatusServiceUnavailable
	case services.ErrKindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
