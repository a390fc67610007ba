package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrankitsharma08/FQL/internal/domain/dto"
	"github.com/mrankitsharma08/FQL/internal/logger"
)

// ErrorHandler turns errors attached to the Gin context into a JSON
// error response. Handlers that already wrote a response are left
// alone; the first attached error wins otherwise.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors[0].Err
	logger.L().Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled request error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal error", err))
}

// AbortWithError writes a JSON error response with the given status
// and stops the handler chain.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
