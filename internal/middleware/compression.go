package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum response size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
		},
	}
}

// CompressionMiddleware gzips JSON responses for clients that accept it
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	level := config.CompressionLevel
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}

	return &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
		pool: sync.Pool{
			New: func() interface{} {
				gz, _ := gzip.NewWriterLevel(io.Discard, level)
				return gz
			},
		},
	}
}

// Handler buffers the response and compresses it once the handler is done,
// so the size and content type are known before choosing an encoding.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !clientAcceptsGzip(c.Request) || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		cm.flush(bw)
	}
}

func (cm *CompressionMiddleware) flush(bw *bufferedWriter) {
	w := bw.ResponseWriter
	body := bw.buf
	original := int64(len(body))

	compress := len(body) >= cm.config.MinSize &&
		w.Header().Get("Content-Encoding") == "" &&
		cm.shouldCompress(w.Header().Get("Content-Type"))

	if !compress {
		cm.stats.RecordRequest(original, original, false)
		if bw.wroteHeader {
			w.WriteHeader(bw.status)
		}
		if len(body) > 0 {
			_, _ = w.Write(body)
		}
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Add("Vary", "Accept-Encoding")
	w.Header().Del("Content-Length")
	w.WriteHeader(bw.status)

	counter := &countingWriter{w: w}
	gz := cm.pool.Get().(*gzip.Writer)
	gz.Reset(counter)
	_, _ = gz.Write(body)
	_ = gz.Close()
	cm.pool.Put(gz)

	cm.stats.RecordRequest(original, counter.n, true)
}

func clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

// shouldCompress checks if the content type should be compressed
func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// bufferedWriter holds the body until the handler chain returns
type bufferedWriter struct {
	gin.ResponseWriter
	buf         []byte
	status      int
	wroteHeader bool
}

func (bw *bufferedWriter) WriteHeader(code int) {
	if code > 0 {
		bw.status = code
		bw.wroteHeader = true
	}
}

func (bw *bufferedWriter) WriteHeaderNow() {
	bw.wroteHeader = true
}

func (bw *bufferedWriter) Write(data []byte) (int, error) {
	bw.wroteHeader = true
	bw.buf = append(bw.buf, data...)
	return len(data), nil
}

func (bw *bufferedWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

func (bw *bufferedWriter) Status() int {
	return bw.status
}

func (bw *bufferedWriter) Size() int {
	if !bw.wroteHeader {
		return -1
	}
	return len(bw.buf)
}

func (bw *bufferedWriter) Written() bool {
	return bw.wroteHeader
}

// Flush is a no-op; the body is sent when the chain returns
func (bw *bufferedWriter) Flush() {}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records the body size before and after encoding
func (cs *CompressionStats) RecordRequest(originalSize, sentSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize
	cs.CompressedBytes += sentSize
	if compressed {
		cs.CompressedRequests++
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	ratio := float64(1)
	if cs.TotalBytes > 0 {
		ratio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"sent_bytes":          cs.CompressedBytes,
		"compression_ratio":   strconv.FormatFloat(ratio, 'f', 3, 64),
		"compression_savings": strconv.FormatFloat(1-ratio, 'f', 3, 64),
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
