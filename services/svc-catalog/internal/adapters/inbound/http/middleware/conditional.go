package middleware

import (
	"bytes"
	"net/http"
	"strings"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type bufferedResponseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.status = code
	w.wroteHeader = true
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	return w.body.Write(b)
}

// ConditionalGET answers If-None-Match with 304. A handler may set its
// own ETag; otherwise the buffered body is hashed.
func ConditionalGET(generator *ETagGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)

				return
			}

			buffered := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(buffered, r)

			if buffered.status < http.StatusOK || buffered.status >= http.StatusMultipleChoices {
				w.WriteHeader(buffered.status)
				_, _ = w.Write(buffered.body.Bytes())

				return
			}

			etag := w.Header().Get(headerETag)
			if etag == "" {
				etag = generator.Generate(buffered.body.Bytes())
				w.Header().Set(headerETag, etag)
			}

			if ETagMatches(r.Header.Get(headerIfNoneMatch), etag) {
				w.Header().Del("Content-Type")
				w.Header().Del("Content-Length")
				w.WriteHeader(http.StatusNotModified)

				return
			}

			w.WriteHeader(buffered.status)
			_, _ = w.Write(buffered.body.Bytes())
		})
	}
}

// ETagMatches applies weak comparison, as If-None-Match requires.
func ETagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}

	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}

	etag = strings.TrimPrefix(etag, "W/")

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}

	return false
}
