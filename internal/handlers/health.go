package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Giftea/skillbazaar/internal/services"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
)

// SkillHealthHandler probes individual skill servers on demand.
type SkillHealthHandler struct {
	skills *services.SkillService
	health *services.HealthService
}

// NewSkillHealthHandler constructs a skill health handler.
func NewSkillHealthHandler(skills *services.SkillService, health *services.HealthService) *SkillHealthHandler {
	return &SkillHealthHandler{skills: skills, health: health}
}

// Probe reports whether the named skill's server answers HTTP at all. Any
// response, including 402 or 404, counts as online.
func (h *SkillHealthHandler) Probe(c *gin.Context) {
	skill, err := h.skills.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrSkillNotFound) {
			response.Error(c, appErrors.ErrSkillNotFound.WithMeta(map[string]any{"online": false}))
			return
		}
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	status := h.health.Probe(c.Request.Context(), skill)
	response.JSON(c, http.StatusOK, gin.H{
		"online": status.Online,
		"skill":  skill.Name,
		"port":   skill.Port,
	})
}

// ServiceHealth reports broker readiness by pinging the database.
func ServiceHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
