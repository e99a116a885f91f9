package middleware

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"go.opentelemetry.io/otel/attribute"
)

const (
	encodingGzip     = "gzip"
	encodingBrotli   = "br"
	encodingDeflate  = "deflate"
	encodingIdentity = "identity"

	compressionAlgorithmKey = "compression.algorithm"

	httpCompressionTotal         = "http_compression_total"
	httpCompressionOriginalBytes = "http_compression_original_bytes"
	httpCompressionWrittenBytes  = "http_compression_compressed_bytes"
)

var (
	// Ties in client quality are broken in this order.
	encodingPreference = []string{encodingGzip, encodingBrotli, encodingDeflate}

	compressibleTypes = []string{
		"application/json",
		"application/problem+json",
		"application/yaml",
		"text/plain",
		"text/html",
	}
)

type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

type encoderPools map[string]*sync.Pool

func newEncoderPools(level int) encoderPools {
	return encoderPools{
		encodingGzip: {New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)

			return w
		}},
		encodingDeflate: {New: func() any {
			w, _ := flate.NewWriter(io.Discard, level)

			return w
		}},
		encodingBrotli: {New: func() any {
			return brotli.NewWriterLevel(io.Discard, level)
		}},
	}
}

// Compression negotiates gzip, brotli or deflate from Accept-Encoding and
// compresses bodies of at least cfg.MinSize bytes with a text media type.
func Compression(cfg config.Compression, metricsClient metrics.Client) func(http.Handler) http.Handler {
	pools := newEncoderPools(cfg.Level)

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsPath(r.URL.Path, cfg.SkipPaths) || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)

				return
			}

			accepted := parseAcceptEncoding(r.Header.Get("Accept-Encoding"))

			encoding := selectEncoding(accepted)
			if encoding == "" {
				if rejectsIdentity(accepted) {
					WriteError(w, http.StatusNotAcceptable, "NOT_ACCEPTABLE", "no acceptable content encoding")

					return
				}

				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			cw := &compressWriter{
				ResponseWriter: w,
				encoding:       encoding,
				minSize:        cfg.MinSize,
				pool:           pools[encoding],
				status:         http.StatusOK,
			}

			defer func() {
				_ = cw.Close()
				cw.record(r.Context(), metricsClient)
			}()

			next.ServeHTTP(cw, r)
		})
	}
}

type acceptedEncoding struct {
	name    string
	quality float64
}

func parseAcceptEncoding(header string) []acceptedEncoding {
	var accepted []acceptedEncoding

	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if name = strings.ToLower(strings.TrimSpace(name)); name == "" {
			continue
		}

		quality := 1.0
		if value, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if q, err := strconv.ParseFloat(value, 64); err == nil {
				quality = q
			}
		}

		accepted = append(accepted, acceptedEncoding{name: name, quality: quality})
	}

	return accepted
}

func selectEncoding(accepted []acceptedEncoding) string {
	best, bestQuality := "", 0.0

	for _, preferred := range encodingPreference {
		quality, explicit := 0.0, false
		for _, enc := range accepted {
			switch {
			case enc.name == preferred:
				quality, explicit = enc.quality, true
			case enc.name == "*" && !explicit:
				quality = enc.quality
			}
		}

		if quality > bestQuality {
			best, bestQuality = preferred, quality
		}
	}

	return best
}

func rejectsIdentity(accepted []acceptedEncoding) bool {
	return slices.ContainsFunc(accepted, func(enc acceptedEncoding) bool {
		return (enc.name == encodingIdentity || enc.name == "*") && enc.quality == 0
	})
}

func skipsPath(path string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

func isCompressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")

	return slices.Contains(compressibleTypes, strings.ToLower(strings.TrimSpace(mediaType)))
}

// compressWriter holds the status and the first minSize bytes back until
// it knows whether the body is worth compressing.
type compressWriter struct {
	http.ResponseWriter
	encoding string
	minSize  int
	pool     *sync.Pool

	status      int
	wroteHeader bool
	committed   bool
	passthrough bool
	buf         []byte

	enc       encoder
	counter   *countingWriter
	rawLength int64
}

func (w *compressWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader = true
	w.status = code

	h := w.Header()
	if code == http.StatusNoContent || code == http.StatusNotModified || code < http.StatusOK ||
		h.Get("Content-Encoding") != "" ||
		(h.Get("Content-Type") != "" && !isCompressible(h.Get("Content-Type"))) {
		w.commit(false)
	}
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}

	if w.enc != nil {
		w.rawLength += int64(len(b))

		return w.enc.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.minSize {
		if err := w.start(); err != nil {
			return 0, err
		}
	}

	return len(b), nil
}

func (w *compressWriter) start() error {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", http.DetectContentType(w.buf))
	}

	if !isCompressible(w.Header().Get("Content-Type")) {
		return w.flushBuffered()
	}

	w.commit(true)

	buffered := w.buf
	w.buf = nil
	w.rawLength += int64(len(buffered))

	_, err := w.enc.Write(buffered)

	return err
}

func (w *compressWriter) commit(compress bool) {
	if w.committed {
		return
	}

	w.committed = true

	if !compress {
		w.passthrough = true
		w.ResponseWriter.WriteHeader(w.status)

		return
	}

	w.Header().Set("Content-Encoding", w.encoding)
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(w.status)

	w.counter = &countingWriter{w: w.ResponseWriter}
	w.enc = w.pool.Get().(encoder)
	w.enc.Reset(w.counter)
}

func (w *compressWriter) flushBuffered() error {
	w.commit(false)

	buffered := w.buf
	w.buf = nil

	if len(buffered) == 0 {
		return nil
	}

	_, err := w.ResponseWriter.Write(buffered)

	return err
}

func (w *compressWriter) Flush() {
	if !w.committed && w.wroteHeader {
		_ = w.start()
	}

	if w.enc != nil {
		_ = w.enc.Flush()
	}

	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *compressWriter) Close() error {
	if !w.committed {
		if !w.wroteHeader {
			return nil
		}

		return w.flushBuffered()
	}

	if w.enc == nil {
		return nil
	}

	err := w.enc.Close()
	w.pool.Put(w.enc)
	w.enc = nil

	return err
}

func (w *compressWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *compressWriter) record(ctx context.Context, metricsClient metrics.Client) {
	if w.counter == nil || metricsClient == nil {
		return
	}

	attr := attribute.String(compressionAlgorithmKey, w.encoding)
	metricsClient.Inc(ctx, httpCompressionTotal, int64(1), attr)
	metricsClient.Inc(ctx, httpCompressionOriginalBytes, w.rawLength, attr)
	metricsClient.Inc(ctx, httpCompressionWrittenBytes, w.counter.n, attr)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)

	return n, err
}
