package api

import (
	"net/http"

	"persona-backend/internal/persona/delivery"
	"persona-backend/internal/persona/repository"
	"persona-backend/internal/persona/usecase"
	"persona-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	personaUsecase usecase.PersonaUsecase,
	settingsRepo repository.SettingsRepository,
	exclusionRepo repository.ExclusionRepository,
	cfg *config.Config,
) {
	personaHandler := delivery.NewPersonaHandler(personaUsecase)
	settingsHandler := delivery.NewSettingsHandler(settingsRepo, cfg.EncryptionKey)
	exclusionHandler := delivery.NewExclusionHandler(exclusionRepo)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		persona := api.Group("/persona")
		{
			// Learning corpus
			persona.POST("/ingest/document", personaHandler.IngestDocument)
			persona.POST("/ingest/chat", personaHandler.IngestChat)
			persona.POST("/ingest/:channel", personaHandler.IngestChannel)
			persona.GET("/ingest/status", personaHandler.GetStatus)
			persona.POST("/embed", personaHandler.EmbedPending)
			persona.POST("/rebuild", personaHandler.Rebuild)

			// Style profile
			persona.GET("/profile", personaHandler.GetProfile)
			persona.POST("/profile/build", personaHandler.BuildProfile)

			// Inbound messages
			persona.POST("/messages", personaHandler.IntakeMessage)
			persona.POST("/messages/process", personaHandler.ProcessMessages)

			// Draft review queue
			drafts := persona.Group("/drafts")
			{
				drafts.GET("", personaHandler.ListDrafts)
				drafts.PATCH("/:id", personaHandler.UpdateDraft)
				drafts.POST("/:id/approve", personaHandler.ApproveDraft)
				drafts.POST("/:id/reject", personaHandler.RejectDraft)
				drafts.POST("/:id/send", personaHandler.SendDraft)
			}

			// Governor settings
			settings := persona.Group("/settings")
			{
				settings.GET("", settingsHandler.GetSettings)
				settings.PUT("", settingsHandler.UpdateSettings)
				settings.POST("/questionnaire", settingsHandler.SubmitQuestionnaire)
			}

			// Sender exclusions
			exclusions := persona.Group("/exclusions")
			{
				exclusions.GET("", exclusionHandler.ListExclusions)
				exclusions.POST("", exclusionHandler.CreateExclusion)
				exclusions.DELETE("/:id", exclusionHandler.DeleteExclusion)
			}
		}
	}
}
