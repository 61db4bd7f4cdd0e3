package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireAdmission adapts the net/http Admission middleware to Gin.
// Admission decisions stay verifier-agnostic; the bridge only moves the
// request between the two handler models.
func GinRequireAdmission(admission *Admission) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		// Wrap Gin request with net/http admission middleware
		handler := admission.Require(next)

		// Execute middleware chain
		handler.ServeHTTP(c.Writer, c.Request)

		// If admission already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
