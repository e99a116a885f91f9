package shared

import (
	"fmt"
	"net/http"
	"time"

	"github.com/architeacher/storefront/pkg/decorator"
)

const (
	HeaderCacheStatus  = "Cache-Status"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderLastModified = "Last-Modified"
	HeaderLocation     = "Location"
	HeaderContentType  = "Content-Type"

	ContentTypeJSON = "application/json"
)

// SetCacheHeaders reports how the query cache served the response and how
// long clients may keep it. Only cache hits and misses are cacheable.
func SetCacheHeaders(w http.ResponseWriter, status decorator.CacheStatus, maxAge uint) {
	w.Header().Set(HeaderCacheStatus, string(status))

	switch status {
	case decorator.CacheStatusHit, decorator.CacheStatusMiss:
		w.Header().Set(HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
	default:
		w.Header().Set(HeaderCacheControl, "no-cache")
	}
}

func SetLastModified(w http.ResponseWriter, t time.Time) {
	w.Header().Set(HeaderLastModified, t.UTC().Format(http.TimeFormat))
}
