// Package handlers contains the gin HTTP handlers of the risk registry API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackops/riskregistry/internal/application/dto"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// sendSuccess writes a wrapped success payload.
func sendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.SuccessResponse(data, requestID(c)))
}

// sendError maps a RegistryError to its HTTP status; anything else becomes 500.
func sendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if regErr, ok := apperrors.AsRegistryError(err); ok {
		status = regErr.HTTPStatus()
	}
	c.JSON(status, dto.ErrorResponse(err, requestID(c)))
}

func requestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
