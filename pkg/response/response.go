package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
)

// JSON writes a plain JSON payload. Marketplace endpoints use flat bodies
// rather than an envelope so that CLI and frontend consumers can unmarshal
// them directly.
func JSON(c *gin.Context, statusCode int, payload any) {
	c.JSON(statusCode, payload)
}

// CachedJSON writes a pre-marshalled JSON payload together with a
// Cache-Control header matching the server-side TTL. Serving the stored bytes
// keeps repeated reads inside the TTL window byte-identical.
func CachedJSON(c *gin.Context, body []byte, maxAge int) {
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Error writes a JSON error body derived from an AppError. The body always
// carries an "error" message; AppError.Meta fields (skill, port, ...) are
// merged alongside it.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": appErr.Message}
	for key, value := range appErr.Meta {
		if key == "error" {
			continue
		}
		body[key] = value
	}

	c.JSON(status, body)
}
