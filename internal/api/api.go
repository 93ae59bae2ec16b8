// Package api exposes the campaign intelligence HTTP surface: campaign CRUD,
// signal collection, enrichment, and blueprint generation.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshuarweaver/brieforge/internal/audit"
	"github.com/joshuarweaver/brieforge/internal/blueprint"
	"github.com/joshuarweaver/brieforge/internal/campaign"
	"github.com/joshuarweaver/brieforge/internal/enrich"
	"github.com/joshuarweaver/brieforge/internal/signals"
)

// Handlers wires the HTTP surface to the domain services.
type Handlers struct {
	campaigns  campaign.Store
	signals    signals.Store
	collector  *signals.Collector
	enricher   *enrich.Service
	blueprints *blueprint.Service
	artifacts  blueprint.Store
	auditor    audit.Logger
}

func NewHandlers(
	campaigns campaign.Store,
	sigs signals.Store,
	collector *signals.Collector,
	enricher *enrich.Service,
	blueprints *blueprint.Service,
	artifacts blueprint.Store,
	auditor audit.Logger,
) *Handlers {
	return &Handlers{
		campaigns:  campaigns,
		signals:    sigs,
		collector:  collector,
		enricher:   enricher,
		blueprints: blueprints,
		artifacts:  artifacts,
		auditor:    auditor,
	}
}

// WorkspaceMiddleware requires the X-Workspace-ID header on every API route
// and stashes it for handlers and request logging.
func WorkspaceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.GetHeader("X-Workspace-ID")
		if workspaceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-Workspace-ID header required"})
			c.Abort()
			return
		}
		c.Set("workspace_id", workspaceID)
		c.Next()
	}
}

// RegisterRoutes mounts all API routes under /api/v1.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(WorkspaceMiddleware())

	v1.POST("/campaigns", h.CreateCampaign)
	v1.GET("/campaigns/:id", h.GetCampaign)
	v1.GET("/campaigns/:id/signals", h.ListSignals)
	v1.POST("/campaigns/:id/collect", h.CollectSignals)
	v1.POST("/campaigns/:id/enrich", h.EnrichSignals)
	v1.POST("/campaigns/:id/blueprint", h.GenerateBlueprint)
	v1.GET("/campaigns/:id/blueprints", h.ListBlueprints)
	v1.GET("/campaigns/:id/blueprints/:artifact_id", h.GetBlueprint)
	v1.GET("/audit", h.ListAuditEvents)
}

type createCampaignRequest struct {
	Name  string         `json:"name" binding:"required"`
	Brief campaign.Brief `json:"brief" binding:"required"`
}

func (h *Handlers) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Brief.Goal == "" || req.Brief.Offer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brief requires goal and offer"})
		return
	}

	created, err := h.campaigns.Create(c.Request.Context(), campaign.Campaign{
		WorkspaceID: c.GetString("workspace_id"),
		Name:        req.Name,
		Brief:       req.Brief,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create campaign"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) GetCampaign(c *gin.Context) {
	camp, err := h.campaigns.Get(c.Request.Context(), c.Param("id"), c.GetString("workspace_id"))
	if errors.Is(err, campaign.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}
	c.JSON(http.StatusOK, camp)
}

func (h *Handlers) ListSignals(c *gin.Context) {
	if _, err := h.campaigns.Get(c.Request.Context(), c.Param("id"), c.GetString("workspace_id")); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}

	limit := queryInt(c, "limit", 100)
	sigs, err := h.signals.ListByCampaign(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list signals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": sigs, "count": len(sigs)})
}

type collectRequest struct {
	Cartridges []string `json:"cartridges"`
	MaxQueries int      `json:"max_queries"`
}

func (h *Handlers) CollectSignals(c *gin.Context) {
	// An empty body means defaults: run every cartridge.
	var req collectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	summary, err := h.collector.Collect(c.Request.Context(), c.Param("id"), c.GetString("workspace_id"), req.Cartridges, req.MaxQueries)
	if errors.Is(err, campaign.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signal collection failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) EnrichSignals(c *gin.Context) {
	summary, err := h.enricher.EnrichCampaign(c.Request.Context(), c.Param("id"), c.GetString("workspace_id"), c.GetHeader("X-User-ID"), queryInt(c, "limit", 0))
	if errors.Is(err, campaign.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enrichment failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) GenerateBlueprint(c *gin.Context) {
	opts := blueprint.Options{Persist: queryBool(c, "persist", true)}
	if raw, ok := c.GetQuery("use_llm"); ok {
		useLLM := raw == "true" || raw == "1"
		opts.UseLLM = &useLLM
	}

	bp, err := h.blueprints.Generate(c.Request.Context(), c.Param("id"), c.GetString("workspace_id"), c.GetHeader("X-User-ID"), opts)
	if errors.Is(err, campaign.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "blueprint generation failed"})
		return
	}
	c.JSON(http.StatusOK, bp)
}

func (h *Handlers) ListBlueprints(c *gin.Context) {
	if _, err := h.campaigns.Get(c.Request.Context(), c.Param("id"), c.GetString("workspace_id")); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}

	artifacts, err := h.artifacts.ListArtifacts(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blueprints"})
		return
	}

	// Listing returns summaries only; the full document comes from the detail
	// endpoint.
	type listItem struct {
		ID               string `json:"id"`
		CampaignID       string `json:"campaign_id"`
		Summary          string `json:"summary"`
		GenerationMethod string `json:"generation_method"`
		CreatedAt        string `json:"created_at"`
	}
	items := make([]listItem, 0, len(artifacts))
	for _, artifact := range artifacts {
		items = append(items, listItem{
			ID:               artifact.ID,
			CampaignID:       artifact.CampaignID,
			Summary:          artifact.Summary,
			GenerationMethod: artifact.Blueprint.Metadata.GenerationMethod,
			CreatedAt:        artifact.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"blueprints": items, "count": len(items)})
}

func (h *Handlers) GetBlueprint(c *gin.Context) {
	if _, err := h.campaigns.Get(c.Request.Context(), c.Param("id"), c.GetString("workspace_id")); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}

	artifact, err := h.artifacts.GetArtifact(c.Request.Context(), c.Param("artifact_id"))
	if errors.Is(err, blueprint.ErrArtifactNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "blueprint not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load blueprint"})
		return
	}
	if artifact.CampaignID != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "blueprint not found"})
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (h *Handlers) ListAuditEvents(c *gin.Context) {
	events, err := h.auditor.ListEvents(c.Request.Context(), c.GetString("workspace_id"), c.Query("event_type"), queryInt(c, "limit", 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	return raw == "true" || raw == "1"
}
