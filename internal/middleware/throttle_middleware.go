package middleware

import (
	"strconv"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
)

// Throttle limits a route to perSecond requests per client IP, allowing
// bursts of burst requests. It runs in front of the login limiter and
// answers 429 without touching the credentials.
func Throttle(perSecond float64, burst int) gin.HandlerFunc {
	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	lmt.SetBurst(burst)

	retryAfter := 1
	if perSecond > 0 {
		retryAfter = int(1/perSecond + 0.999)
	}

	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByKeys(lmt, []string{c.ClientIP(), c.FullPath()}); httpErr != nil {
			GetLoggerFromContext(c).Warn("Request throttled", map[string]interface{}{
				"ip":   c.ClientIP(),
				"path": c.FullPath(),
			})
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			apperrors.TooManyRequests(c, i18n.T(GetLocale(c), i18n.MsgTooManyRequests))
			return
		}
		c.Next()
	}
}
