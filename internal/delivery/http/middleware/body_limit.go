package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the room left for multipart boundaries and part
// headers on top of the file itself.
const multipartOverhead = 64 << 10

// BodySizeLimit rejects requests whose declared body exceeds maxBytes plus
// multipart framing with 413, and caps the body reader for the rest. The
// exact file size is enforced when the upload is spooled.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	limit := maxBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "file size exceeds limit",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
