package handler

import "github.com/gin-gonic/gin"

// Envelope is the single response shape for every service route. Detail
// carries a message or a small object, never sink internals.
type Envelope struct {
	StatusCode int `json:"status_code"`
	Detail     any `json:"detail"`
}

func respond(c *gin.Context, status int, detail any) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Detail:     detail,
	})
}
