package delivery

import (
	"net/http"

	"persona-backend/internal/persona/repository"

	"github.com/gin-gonic/gin"
)

type ExclusionHandler struct {
	exclusionRepo repository.ExclusionRepository
}

func NewExclusionHandler(exclusionRepo repository.ExclusionRepository) *ExclusionHandler {
	return &ExclusionHandler{exclusionRepo: exclusionRepo}
}

// CreateExclusionRequest carries a sender pattern to block. Pattern is
// either a full address or a "@domain" suffix.
type CreateExclusionRequest struct {
	Pattern string `json:"pattern" binding:"required"`
	Reason  string `json:"reason"`
}

// CreateExclusion adds an exclusion rule.
// POST /api/persona/exclusions
func (h *ExclusionHandler) CreateExclusion(c *gin.Context) {
	var req CreateExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.exclusionRepo.Create(req.Pattern, req.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// ListExclusions returns all exclusion rules.
// GET /api/persona/exclusions
func (h *ExclusionHandler) ListExclusions(c *gin.Context) {
	rules, err := h.exclusionRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exclusions": rules})
}

// DeleteExclusion removes an exclusion rule.
// DELETE /api/persona/exclusions/:id
func (h *ExclusionHandler) DeleteExclusion(c *gin.Context) {
	if err := h.exclusionRepo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "exclusion deleted"})
}
