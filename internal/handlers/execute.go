package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Giftea/skillbazaar/internal/services"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
)

// ExecuteHandler proxies paid skill invocations.
type ExecuteHandler struct {
	executor *services.ExecutorService
}

// NewExecuteHandler constructs an execute handler.
func NewExecuteHandler(executor *services.ExecutorService) *ExecuteHandler {
	return &ExecuteHandler{executor: executor}
}

type executeRequest struct {
	Param string `json:"param"`
}

// Execute resolves the named skill, pays for a call to its endpoint, and
// relays the upstream result. An empty or absent body means a parameterless
// invocation.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req executeRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.NewBadRequest("request body must be JSON"))
			return
		}
	}

	result, err := h.executor.Execute(c.Request.Context(), c.Param("name"), req.Param)
	if err != nil {
		response.Error(c, executeError(err))
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// executeError classifies executor failures per the error taxonomy: unknown
// skill, unreachable upstream, and everything else as a generic execution
// failure that leaks no upstream detail.
func executeError(err error) error {
	var offline *services.UpstreamOfflineError
	switch {
	case errors.Is(err, services.ErrSkillNotFound):
		return appErrors.ErrSkillNotFound
	case errors.As(err, &offline):
		return appErrors.ErrUpstreamOffline.WithInternal(err).WithMeta(map[string]any{
			"skill": offline.Skill,
			"port":  offline.Port,
		})
	case errors.Is(err, services.ErrExecutionTimeout):
		return appErrors.ErrExecutionTimeout.WithInternal(err)
	default:
		return appErrors.ErrExecutionTimeout.WithInternal(err)
	}
}
