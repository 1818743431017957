// internal/api/handlers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/services"
	"github.com/Corphon/NovelForge/internal/utils"
)

// Handler serves the /api surface.
type Handler struct {
	ManuscriptService *services.ManuscriptService
	CharacterService  *services.CharacterService
	StatsService      *services.StatsService
	Metrics           *utils.MetricsCollector
	Response          *ResponseHelper

	startedAt time.Time
}

// NewHandler creates a handler over the given services.
func NewHandler(
	manuscriptService *services.ManuscriptService,
	characterService *services.CharacterService,
	statsService *services.StatsService,
	metrics *utils.MetricsCollector,
	logger *utils.Logger,
) *Handler {
	if metrics == nil {
		metrics = utils.GetMetricsCollector()
	}
	return &Handler{
		ManuscriptService: manuscriptService,
		CharacterService:  characterService,
		StatsService:      statsService,
		Metrics:           metrics,
		Response:          NewResponseHelper(logger),
		startedAt:         time.Now(),
	}
}

// bindJSON decodes the body into req, answering 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.Response.BadRequest(c, ErrorInvalidBody, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// GetMetrics returns the request counters and latency histograms.
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.GetMetrics())
}

// ListNovels returns the novel index, most recently updated first.
func (h *Handler) ListNovels(c *gin.Context) {
	novels, err := h.ManuscriptService.ListNovels()
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, novels)
}

// CreateNovel creates an empty novel.
func (h *Handler) CreateNovel(c *gin.Context) {
	var req models.CreateNovelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	novel, err := h.ManuscriptService.CreateNovel(req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, novel, "novel created")
}

// NoRoute answers unknown paths with an envelope.
func (h *Handler) NoRoute(c *gin.Context) {
	h.Response.Error(c, http.StatusNotFound, ErrorRouteNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}
