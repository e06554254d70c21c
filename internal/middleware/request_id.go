package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const ContextRequestIDKey = "request_id"

const requestIDHeader = "X-Request-Id"

// RequestID threads an identifier through response header and request
// context so one import or export run can be followed across log
// lines. A caller-supplied id is kept; otherwise one is issued.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			buf := make([]byte, 16)
			_, _ = rand.Read(buf)
			id = hex.EncodeToString(buf)
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(ContextRequestIDKey, id)
		c.Next()
	}
}
