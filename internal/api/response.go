package api

import (
	"github.com/gin-gonic/gin"
)

const requestIDKey = "RequestID"

// Response is the JSON envelope of every API reply.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

func failure(c *gin.Context, code int, message string, detail any) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     detail,
		RequestID: requestID(c),
	})
}

func requestID(c *gin.Context) string {
	id, _ := c.Get(requestIDKey)
	s, _ := id.(string)
	return s
}
