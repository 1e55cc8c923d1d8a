package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codementor-backend/internal/http/response"
	"github.com/yungbote/codementor-backend/internal/mentor"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type PersonalityHandler struct{}

func NewPersonalityHandler() *PersonalityHandler { return &PersonalityHandler{} }

// GET /api/mentor/personalities
func (h *PersonalityHandler) ListPersonalities(c *gin.Context) {
	profiles := make([]mentor.Profile, 0, len(mentor.Personalities))
	for _, p := range mentor.Personalities {
		profiles = append(profiles, p.Profile())
	}
	response.RespondOK(c, gin.H{"personalities": profiles, "default": mentor.DefaultPersonality})
}
