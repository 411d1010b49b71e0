package api

import (
	"persona-backend/internal/persona/repository"
	"persona-backend/internal/persona/usecase"
	"persona-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	personaUsecase usecase.PersonaUsecase
	settingsRepo   repository.SettingsRepository
	exclusionRepo  repository.ExclusionRepository
	config         *config.Config
}

func NewHandler(personaUc usecase.PersonaUsecase, settingsRepo repository.SettingsRepository, exclusionRepo repository.ExclusionRepository, cfg *config.Config) *Handler {
	return &Handler{
		personaUsecase: personaUc,
		settingsRepo:   settingsRepo,
		exclusionRepo:  exclusionRepo,
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	return h.engine().Run(addr)
}

// engine builds the configured router. The mode must be set before the
// engine is created or it has no effect.
func (h *Handler) engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.personaUsecase, h.settingsRepo, h.exclusionRepo, h.config)

	return r
}
