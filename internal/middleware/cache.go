package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorlink-api/pkg/middleware/requestid"
)

const (
	responseMetaKey  = "response_meta"
	cacheHitKey      = "cache_hit"
	requestIDMetaKey = "request_id"
	processingKey    = "processing_time_ms"
)

// WithResponseMeta prepares the meta map that handlers pass to response.JSON. The request
// id is added up front; processing time is filled in once the handler chain returns.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta[requestIDMetaKey] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
		meta[processingKey] = time.Since(start).Milliseconds()
	}
}

// SetCacheHit marks whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)[cacheHitKey] = hit
}

// ExtractMeta returns the meta map for the request, or nil outside WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, _ := value.(map[string]interface{})
	return meta
}

func metaFor(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]interface{}{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
