package monitoring

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Init()
}

func TestLogger_TimestampAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelWarn)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(slog.LevelInfo)
	logger.AssessmentLogger("abc", "manual", 1, 0.8, 15, time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Assessment Completed", entry["msg"])
	assert.Equal(t, "abc", entry["assessment_id"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "time")
}

func TestLogger_ExtractionWarnsOnMissing(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	logger.ExtractionLogger("pdf", 1024, []string{"BMI"}, false, time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, []interface{}{"BMI"}, entry["missing_fields"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestMetrics_Assessments(t *testing.T) {
	m := NewMetrics()

	m.RecordAssessment("manual", 1, 0.7, 15)
	m.RecordAssessment("document", 0, -1.2, 0)
	m.RecordDocument("pdf", "incomplete")
	m.RecordDocument("pdf", "error")
	m.RecordDocument("text", "complete")
	m.IncrementContactMessages()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["assessments"])
	assert.Equal(t, int64(1), stats["positive_assessments"])
	assert.Equal(t, 50.0, stats["positive_rate_percent"])
	assert.Equal(t, int64(1), stats["document_failures"])
	assert.Equal(t, int64(1), stats["incomplete_documents"])
	assert.Equal(t, int64(1), stats["contact_messages"])

	m.Reset()
	assert.Equal(t, int64(0), m.GetStats()["assessments"])
}

func TestMetrics_Percentiles(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 100*time.Millisecond, m.GetPercentileResponseTime(100))

	for i := 0; i < maxResponseSamples+10; i++ {
		m.RecordResponseTime(time.Millisecond)
	}
	assert.Len(t, m.ResponseTimes, maxResponseSamples)
}

func TestMetrics_RateLimitStats(t *testing.T) {
	m := NewMetrics()
	m.IncrementRateLimitIPBlock()
	m.IncrementRateLimitEndpoint("/api/assess")
	m.IncrementRateLimitEndpoint("/api/assess")

	stats := m.GetRateLimitStats()
	assert.Equal(t, int64(1), stats["ip_blocks"])
	assert.Equal(t, map[string]int64{"/api/assess": 2}, stats["endpoint_blocks"])
}

func TestMonitoringMiddleware(t *testing.T) {
	metrics := NewMetrics()
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(MonitoringMiddleware(metrics, logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/fail", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, int64(3), metrics.RequestCount)
	assert.Equal(t, int64(2), metrics.ErrorCount)
	dist := metrics.GetStatusCodeDistribution()
	assert.Equal(t, int64(1), dist[http.StatusOK])
	assert.Equal(t, int64(1), dist[http.StatusNotFound])
	assert.Contains(t, buf.String(), "HTTP Request")
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(SecurityMonitoringMiddleware(logger, 1024))
	router.GET("/api/model", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	router.ServeHTTP(w, req)
	assert.Empty(t, buf.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/model?q=1%20UNION%20SELECT%20x", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(buf.String(), "suspicious_activity_detected"))
}

func TestHealthHandler(t *testing.T) {
	metrics := NewMetrics()
	ready := false

	router := gin.New()
	router.GET("/health", HealthHandler(metrics, func() (string, bool) {
		if ready {
			return "Ready", true
		}
		return "ScalerFitted", false
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"pipeline_state":"ScalerFitted"`)

	ready = true
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestPrometheusHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordAssessment("manual", 1, 0.5, 4)

	router := gin.New()
	router.GET("/metrics/prometheus", PrometheusHandler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "glucoscreen_assessments_total")
}
