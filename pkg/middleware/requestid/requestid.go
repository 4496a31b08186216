// Package requestid tags every request with a correlation id so log
// lines from handlers, services and background jobs can be stitched
// back together.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation id between services. Inbound values
// are reused so an upstream caller's id survives the hop.
const Header = "X-Request-ID"

const ctxKey = "request_id"

// Middleware reuses the inbound X-Request-ID header or mints a fresh
// UUID, stores the id on the Gin context and echoes it back in the
// response headers.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the correlation id assigned to the request, or the
// empty string when called outside the middleware.
func Value(c *gin.Context) string {
	id, _ := c.Value(ctxKey).(string)
	return id
}
