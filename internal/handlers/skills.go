package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Giftea/skillbazaar/internal/cache"
	"github.com/Giftea/skillbazaar/internal/services"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
	"github.com/Giftea/skillbazaar/pkg/validator"
)

const (
	skillsCacheKey = "skills"

	// Placeholder value shown in endpoint_example on the info endpoint.
	exampleParam = "0x1234...abcd"
)

// SkillHandler serves the catalog: listing, lookup, and registration.
type SkillHandler struct {
	skills  *services.SkillService
	cache   *cache.Memory
	listTTL time.Duration
}

// NewSkillHandler constructs a skill handler.
func NewSkillHandler(skills *services.SkillService, store *cache.Memory, listTTL time.Duration) *SkillHandler {
	return &SkillHandler{skills: skills, cache: store, listTTL: listTTL}
}

// List returns every skill, newest first, with a count. The payload is cached
// and replayed byte for byte inside the TTL window.
func (h *SkillHandler) List(c *gin.Context) {
	body, _, err := h.cache.GetOrCompute(skillsCacheKey, h.listTTL, func() ([]byte, error) {
		skills, err := h.skills.List(c.Request.Context())
		if err != nil {
			return nil, err
		}
		return json.Marshal(gin.H{"skills": skills, "count": len(skills)})
	})
	if err != nil {
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	response.CachedJSON(c, body, int(h.listTTL.Seconds()))
}

// Get returns a single skill record by name.
func (h *SkillHandler) Get(c *gin.Context) {
	skill, err := h.skills.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrSkillNotFound) {
			response.Error(c, appErrors.ErrSkillNotFound)
			return
		}
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	response.JSON(c, http.StatusOK, skill)
}

// Info returns the full record plus the endpoint template and a worked
// example of it. Reading info does not count as usage; only paid executions
// touch the counter.
func (h *SkillHandler) Info(c *gin.Context) {
	skill, err := h.skills.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrSkillNotFound) {
			response.Error(c, appErrors.ErrSkillNotFound)
			return
		}
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	example := skill.Endpoint
	if tmpl, err := services.ParseEndpointTemplate(skill.Endpoint); err == nil {
		example = tmpl.Expand(exampleParam)
	}

	var body map[string]any
	raw, err := json.Marshal(skill)
	if err == nil {
		err = json.Unmarshal(raw, &body)
	}
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	body["endpoint_template"] = skill.Endpoint
	body["endpoint_example"] = example

	response.JSON(c, http.StatusOK, body)
}

// Register creates or replaces a skill by name.
func (h *SkillHandler) Register(c *gin.Context) {
	var input services.RegisterSkillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.NewBadRequest(
			"Missing required fields: name, description, endpoint, price_usd, publisher_wallet, category, port"))
		return
	}

	skill, err := h.skills.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, registerError(err))
		return
	}

	response.JSON(c, http.StatusCreated, skill)
}

// registerError translates service failures into client-facing errors.
func registerError(err error) error {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		for _, fieldErr := range fieldErrs {
			// A missing price is a missing field; only range violations get
			// the range message.
			if fieldErr.Field == "price_usd" && (fieldErr.Tag == "gte" || fieldErr.Tag == "lte") {
				return appErrors.NewBadRequest("price_usd must be between 0.001 and 10")
			}
		}
		return appErrors.NewBadRequest(
			"Missing required fields: name, description, endpoint, price_usd, publisher_wallet, category, port")
	case errors.Is(err, services.ErrProfaneContent):
		return appErrors.NewBadRequest("name or description contains blocked words")
	case errors.Is(err, services.ErrInvalidEndpoint):
		return appErrors.NewBadRequest("endpoint must be an absolute http(s) URL with at most one placeholder")
	default:
		return appErrors.ErrStore.WithInternal(err)
	}
}
