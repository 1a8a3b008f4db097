package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Giftea/skillbazaar/internal/services"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
)

const serviceName = "SkillBazaar"

// Version is the marketplace release reported on the root endpoint.
const Version = "1.0.0"

// RootHandler serves the service identity banner.
type RootHandler struct {
	skills *services.SkillService
}

// NewRootHandler constructs the root info handler.
func NewRootHandler(skills *services.SkillService) *RootHandler {
	return &RootHandler{skills: skills}
}

// Info reports the service name, version, and current catalog size.
func (h *RootHandler) Info(c *gin.Context) {
	skills, err := h.skills.List(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"name":         serviceName,
		"version":      Version,
		"total_skills": len(skills),
	})
}
