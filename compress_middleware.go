package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// withCompression wraps h so that /api/result (the largest response body,
// a full Result with per-stage waveform slices) is compressed whenever the
// client advertises support. Brotli is preferred over gzip when both are
// accepted, matching typical browser preference order.
func withCompression(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept-Encoding")

		switch {
		case strings.Contains(accept, "br"):
			bw := brotli.NewWriter(w)
			defer bw.Close()
			w.Header().Set("Content-Encoding", "br")
			h.ServeHTTP(&compressingResponseWriter{ResponseWriter: w, writer: bw}, r)
		case strings.Contains(accept, "gzip"):
			gw := gzip.NewWriter(w)
			defer gw.Close()
			w.Header().Set("Content-Encoding", "gzip")
			h.ServeHTTP(&compressingResponseWriter{ResponseWriter: w, writer: gw}, r)
		default:
			h.ServeHTTP(w, r)
		}
	})
}

// compressingResponseWriter redirects body writes through a compressing
// io.Writer while leaving header/status handling to the underlying
// http.ResponseWriter.
type compressingResponseWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (c *compressingResponseWriter) Write(p []byte) (int, error) {
	return c.writer.Write(p)
}
