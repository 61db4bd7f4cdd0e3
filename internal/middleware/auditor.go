package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
)

// Auditor emits one structured log record per inbound request, before any
// admission decision is made. It is an observer only: it must not change
// the response, and a body it cannot parse is logged as a warning while
// the request proceeds untouched.
func Auditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}

		switch c.Request.Method {
		case http.MethodGet:
			if params := c.Request.URL.Query(); len(params) > 0 {
				fields["params"] = params
			}
			logger.Info("inbound request", fields)

		default:
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				logger.Warn("inbound request body unreadable", fields)
				logger.Info("inbound request", fields)
				break
			}
			// Hand the handler back an untouched body.
			c.Request.Body = io.NopCloser(bytes.NewReader(body))

			var parsed any
			if len(body) > 0 {
				if err := json.Unmarshal(body, &parsed); err != nil {
					logger.Warn("inbound request body is not valid json", map[string]any{
						"method": c.Request.Method,
						"path":   c.Request.URL.Path,
						"error":  err.Error(),
					})
				} else {
					fields["body"] = parsed
				}
			}
			logger.Info("inbound request", fields)
		}

		c.Next()
	}
}
