// internal/api/router.go
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/NovelForge/internal/config"
	"github.com/Corphon/NovelForge/internal/di"
	"github.com/Corphon/NovelForge/internal/services"
	"github.com/Corphon/NovelForge/internal/utils"
)

// RouterOptions tunes the engine built by NewRouter.
type RouterOptions struct {
	Debug bool
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	Logger    *utils.Logger
}

// SetupRouter builds the HTTP router from the services registered in container.
func SetupRouter(container *di.Container, cfg *config.Config) (*gin.Engine, error) {
	manuscriptService, ok := di.Lookup[*services.ManuscriptService](container, di.ManuscriptService)
	if !ok {
		return nil, fmt.Errorf("manuscript service is not registered")
	}
	characterService, ok := di.Lookup[*services.CharacterService](container, di.CharacterService)
	if !ok {
		return nil, fmt.Errorf("character service is not registered")
	}
	statsService, ok := di.Lookup[*services.StatsService](container, di.StatsService)
	if !ok {
		return nil, fmt.Errorf("stats service is not registered")
	}
	metrics, _ := di.Lookup[*utils.MetricsCollector](container, di.Metrics)
	logger, _ := di.Lookup[*utils.Logger](container, di.Logger)

	handler := NewHandler(manuscriptService, characterService, statsService, metrics, logger)
	return NewRouter(handler, RouterOptions{
		Debug:     cfg.DebugMode,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	}), nil
}

// NewRouter wires every route onto a fresh engine.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics(utils.NewRequestMetrics("server", handler.Metrics, logger)))
	r.Use(corsMiddleware())
	r.NoRoute(handler.NoRoute)

	api := r.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(RateLimitByIP(NewRateLimiter(opts.RateLimit, time.Minute), handler.Response))
	}
	{
		api.GET("/health", handler.Health)
		api.GET("/metrics", handler.GetMetrics)

		api.GET("/novels", handler.ListNovels)
		api.POST("/novels", handler.CreateNovel)
		api.DELETE("/novels/:novelId", handler.DeleteNovel)

		novel := api.Group("/novels/:novelId")
		{
			novel.GET("/structure", handler.GetStructure)
			novel.DELETE("/structure", handler.DeleteStructure)
			novel.GET("/stats", handler.GetWritingStats)

			// ===============================
			// Manuscript tree
			// ===============================
			acts := novel.Group("/acts")
			{
				acts.POST("", handler.CreateAct)
				acts.PUT("/:id", handler.RenameAct)
				acts.DELETE("/:id", handler.DeleteAct)
				acts.PUT("/:id/reorder", handler.ReorderAct)
			}

			chapters := novel.Group("/chapters")
			{
				chapters.POST("", handler.CreateChapter)
				chapters.PUT("/:id", handler.RenameChapter)
				chapters.DELETE("/:id", handler.DeleteChapter)
				chapters.PUT("/:id/reorder", handler.ReorderChapter)
			}

			scenes := novel.Group("/scenes")
			{
				scenes.POST("", handler.CreateScene)
				scenes.PUT("/:id", handler.UpdateScene)
				scenes.DELETE("/:id", handler.DeleteScene)
				scenes.PUT("/:id/reorder", handler.ReorderScene)
			}

			// ===============================
			// Character domain
			// ===============================
			characters := novel.Group("/characters")
			{
				characters.GET("", handler.ListCharacters)
				characters.POST("", handler.CreateCharacter)
				characters.GET("/:id", handler.GetCharacter)
				characters.PUT("/:id", handler.UpdateCharacter)
				characters.DELETE("/:id", handler.DeleteCharacter)
				characters.GET("/:id/states", handler.ListStates)
				characters.POST("/:id/states", handler.CreateState)
			}

			novel.GET("/relationships", handler.ListRelationships)
			novel.POST("/relationships", handler.CreateRelationship)
			novel.DELETE("/relationships/:id", handler.DeleteRelationship)

			novel.GET("/pov-assignments", handler.ListPOVAssignments)
			novel.PUT("/pov-assignments", handler.AssignPOV)

			novel.GET("/mentions", handler.Mentions)
		}
	}

	return r
}
