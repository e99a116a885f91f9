package middleware_test

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/architeacher/storefront/pkg/metrics/noop"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/stretchr/testify/require"
)

func compressionConfig() config.Compression {
	return config.Compression{
		Enabled:   true,
		Level:     5,
		MinSize:   64,
		SkipPaths: []string{"/metrics"},
	}
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func decode(t *testing.T, encoding string, body []byte) string {
	t.Helper()

	var (
		r   io.Reader
		err error
	)

	switch encoding {
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(body))
		require.NoError(t, err)
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	case "deflate":
		r = flate.NewReader(bytes.NewReader(body))
	default:
		return string(body)
	}

	decoded, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(decoded)
}

func TestCompression(t *testing.T) {
	t.Parallel()

	large := `{"data":"` + strings.Repeat("catalog ", 64) + `"}`
	small := `{"data":"ok"}`

	cases := []struct {
		name             string
		path             string
		acceptEncoding   string
		body             string
		expectedStatus   int
		expectedEncoding string
	}{
		{
			name:             "gzip",
			path:             "/v1/products",
			acceptEncoding:   "gzip",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "gzip",
		},
		{
			name:             "higher quality wins",
			path:             "/v1/products",
			acceptEncoding:   "gzip;q=0.5, br",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "br",
		},
		{
			name:             "ties prefer gzip",
			path:             "/v1/products",
			acceptEncoding:   "deflate, br, gzip",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "gzip",
		},
		{
			name:             "deflate",
			path:             "/v1/products",
			acceptEncoding:   "deflate",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "deflate",
		},
		{
			name:             "wildcard",
			path:             "/v1/products",
			acceptEncoding:   "*",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "gzip",
		},
		{
			name:             "explicit refusal beats wildcard",
			path:             "/v1/products",
			acceptEncoding:   "gzip;q=0, *",
			body:             large,
			expectedStatus:   http.StatusOK,
			expectedEncoding: "br",
		},
		{
			name:           "below minimum size",
			path:           "/v1/products",
			acceptEncoding: "gzip",
			body:           small,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no accept encoding",
			path:           "/v1/products",
			body:           large,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "skipped path",
			path:           "/metrics",
			acceptEncoding: "gzip",
			body:           large,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "identity refused",
			path:           "/v1/products",
			acceptEncoding: "zstd, identity;q=0",
			body:           large,
			expectedStatus: http.StatusNotAcceptable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := middleware.Compression(compressionConfig(), noop.NewMetricsClient())(jsonHandler(tc.body))

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tc.acceptEncoding)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectedStatus != http.StatusOK {
				return
			}

			require.Equal(t, tc.expectedEncoding, rec.Header().Get("Content-Encoding"))
			require.Equal(t, tc.body, decode(t, tc.expectedEncoding, rec.Body.Bytes()))

			if tc.expectedEncoding != "" {
				require.Less(t, rec.Body.Len(), len(tc.body))
			}
		})
	}
}

func TestCompressionSkipsBinaryContent(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte{0x89, 'P', 'N', 'G'}, 100)
	h := middleware.Compression(compressionConfig(), noop.NewMetricsClient())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/products/1/images/2", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Equal(t, payload, rec.Body.Bytes())
}

func TestCompressionDisabled(t *testing.T) {
	t.Parallel()

	cfg := compressionConfig()
	cfg.Enabled = false

	body := `{"data":"` + strings.Repeat("x", 512) + `"}`
	h := middleware.Compression(cfg, noop.NewMetricsClient())(jsonHandler(body))

	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Equal(t, body, rec.Body.String())
}
