package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentEncodingGzip = "gzip"

func serveCompressed(t *testing.T, h http.Handler, method, acceptEncoding string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	Compression(CompressionConfig{Level: 5})(h).ServeHTTP(rec, req)
	resp := rec.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCompression_JSON(t *testing.T) {
	payload := map[string]string{"message": strings.Repeat("Concert ", 500)}
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, payload)
	})

	resp := serveCompressed(t, h, http.MethodGet, "gzip, deflate")

	assert.Equal(t, contentEncodingGzip, resp.Header.Get("Content-Encoding"))
	assert.Contains(t, resp.Header.Values("Vary"), "Accept-Encoding")
	gr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"message":"Concert Concert`)
}

func TestCompression_AcceptEncoding(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
	}{
		{"gzip with q=1", "gzip;q=1", true},
		{"gzip with q=0.5", "gzip;q=0.5", true},
		{"gzip with q=0", "gzip;q=0", false},
		{"gzip with spaced q=0", "gzip; q=0", false},
		{"deflate, gzip", "deflate, gzip", true},
		{"uppercase", "GZIP", true},
		{"deflate only", "deflate", false},
		{"empty", "", false},
	}
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serveCompressed(t, h, http.MethodGet, tt.acceptEncoding)

			assert.Equal(t, tt.expectGzip, resp.Header.Get("Content-Encoding") == contentEncodingGzip)
		})
	}
}

func TestCompression_PassThrough(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		handler http.HandlerFunc
	}{
		{"HEAD request", http.MethodHead, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		}},
		{"no content", http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
		{"binary", http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		}},
		{"already encoded", http.MethodGet, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write([]byte("x"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serveCompressed(t, tt.handler, tt.method, "gzip")

			assert.NotEqual(t, contentEncodingGzip, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestCompression_SniffsContentType(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "plain words")
	})

	resp := serveCompressed(t, h, http.MethodGet, "gzip")

	assert.Equal(t, contentEncodingGzip, resp.Header.Get("Content-Encoding"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
}
