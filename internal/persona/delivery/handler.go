package delivery

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"persona-backend/internal/channel"
	"persona-backend/internal/persona/domain"
	"persona-backend/internal/persona/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PersonaHandler struct {
	personaUsecase usecase.PersonaUsecase
}

func NewPersonaHandler(personaUsecase usecase.PersonaUsecase) *PersonaHandler {
	return &PersonaHandler{
		personaUsecase: personaUsecase,
	}
}

// IngestChannel runs the configured adapter for one source type.
// POST /api/persona/ingest/:channel
func (h *PersonaHandler) IngestChannel(c *gin.Context) {
	sourceType := c.Param("channel")

	result, err := h.personaUsecase.IngestConfigured(c.Request.Context(), sourceType)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if result.Error != "" {
		// Partial success: some samples may be saved already.
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// IngestDocument ingests one uploaded file (PDF or plain text).
// POST /api/persona/ingest/document
func (h *PersonaHandler) IngestDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adapter := channel.NewDocumentAdapter(file.Filename, data)
	result := h.personaUsecase.IngestChannel(c.Request.Context(), adapter)
	if result.Error != "" {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// IngestChatRequest carries a pasted chat transcript.
type IngestChatRequest struct {
	Text  string `json:"text" binding:"required"`
	Label string `json:"label"`
}

// IngestChat ingests a pasted transcript of the user's own messages.
// POST /api/persona/ingest/chat
func (h *PersonaHandler) IngestChat(c *gin.Context) {
	var req IngestChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adapter := channel.NewChatAdapter(req.Text, req.Label)
	result := h.personaUsecase.IngestChannel(c.Request.Context(), adapter)
	if result.Error != "" {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStatus reports corpus counts and index health.
// GET /api/persona/ingest/status
func (h *PersonaHandler) GetStatus(c *gin.Context) {
	status, err := h.personaUsecase.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// EmbedPending pushes unembedded samples into the vector index.
// POST /api/persona/embed
func (h *PersonaHandler) EmbedPending(c *gin.Context) {
	n, err := h.personaUsecase.EmbedPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "embedded": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"embedded": n})
}

// BuildProfile rebuilds the style profile from the current corpus.
// POST /api/persona/profile/build
func (h *PersonaHandler) BuildProfile(c *gin.Context) {
	profile, err := h.personaUsecase.BuildProfile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile returns the current style profile.
// GET /api/persona/profile
func (h *PersonaHandler) GetProfile(c *gin.Context) {
	profile, err := h.personaUsecase.GetProfile()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile built yet"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// IntakeRequest is the inbound message payload from a mail collaborator.
type IntakeRequest struct {
	Sender     string `json:"sender" binding:"required"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Urgency    string `json:"urgency"`
	ReceivedAt string `json:"received_at"`
}

// IntakeMessage registers an inbound message.
// POST /api/persona/messages
func (h *PersonaHandler) IntakeMessage(c *gin.Context) {
	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receivedAt := time.Now()
	if req.ReceivedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.ReceivedAt); err == nil {
			receivedAt = parsed
		}
	}

	msg := &domain.IncomingMessage{
		ID:         uuid.New().String(),
		Sender:     req.Sender,
		Subject:    req.Subject,
		Body:       req.Body,
		Urgency:    req.Urgency,
		ReceivedAt: receivedAt,
	}
	if err := h.personaUsecase.IntakeMessage(msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ProcessMessages drafts replies for all undrafted messages.
// POST /api/persona/messages/process
func (h *PersonaHandler) ProcessMessages(c *gin.Context) {
	report, err := h.personaUsecase.ProcessNewEmails(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListDrafts returns the review queue.
// GET /api/persona/drafts?status=&limit=&offset=
func (h *PersonaHandler) ListDrafts(c *gin.Context) {
	status := c.Query("status")

	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	drafts, err := h.personaUsecase.ListDrafts(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"drafts": drafts,
		"limit":  limit,
		"offset": offset,
	})
}

// ApproveDraft marks a draft ready to send.
// POST /api/persona/drafts/:id/approve
func (h *PersonaHandler) ApproveDraft(c *gin.Context) {
	draft, err := h.personaUsecase.ApproveDraft(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// RejectDraft discards a draft.
// POST /api/persona/drafts/:id/reject
func (h *PersonaHandler) RejectDraft(c *gin.Context) {
	draft, err := h.personaUsecase.RejectDraft(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateDraftRequest carries an edited reply body.
type UpdateDraftRequest struct {
	Body string `json:"body" binding:"required"`
}

// UpdateDraft edits a draft's reply text.
// PATCH /api/persona/drafts/:id
func (h *PersonaHandler) UpdateDraft(c *gin.Context) {
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.personaUsecase.UpdateDraftBody(c.Param("id"), req.Body)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SendDraft dispatches a draft through outbound mail.
// POST /api/persona/drafts/:id/send
func (h *PersonaHandler) SendDraft(c *gin.Context) {
	draft, err := h.personaUsecase.SendDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrReadOnly) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Rebuild tears down and reconstructs the learned corpus.
// POST /api/persona/rebuild
func (h *PersonaHandler) Rebuild(c *gin.Context) {
	report, err := h.personaUsecase.Rebuild(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
