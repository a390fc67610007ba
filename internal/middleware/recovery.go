package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mrankitsharma08/FQL/internal/domain/dto"
	"github.com/mrankitsharma08/FQL/internal/logger"
)

// RecoveryMiddleware recovers from panics in handlers, logs the stack
// trace, and returns a standardized JSON error response. A panic
// stays scoped to its request; it must never take down the process
// or poison subsequent requests.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				errResponse := dto.NewErrorResponse("Internal server error", fmt.Errorf("%v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errResponse)
			}
		}()

		c.Next()
	}
}
