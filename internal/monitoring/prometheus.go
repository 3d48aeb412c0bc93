package monitoring

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucoscreen_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glucoscreen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucoscreen_assessments_total",
			Help: "Scored vectors by input source and label",
		},
		[]string{"source", "label"},
	)

	DecisionMargin = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glucoscreen_decision_margin",
			Help:    "Signed distance of scored vectors from the decision boundary",
			Buckets: []float64{-3, -2, -1, -0.5, 0, 0.5, 1, 2, 3},
		},
	)

	AdviceLines = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glucoscreen_advice_lines",
			Help:    "Advice lines attached per assessment",
			Buckets: []float64{0, 2, 4, 8, 12, 16, 20, 28},
		},
	)

	DocumentExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucoscreen_document_extractions_total",
			Help: "Uploaded documents by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ExtractionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucoscreen_extraction_cache_total",
			Help: "Extraction cache lookups",
		},
		[]string{"result"},
	)

	RateLimitBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucoscreen_rate_limit_blocks_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	PipelineState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glucoscreen_pipeline_state",
			Help: "Assessment pipeline lifecycle stage (4 is Ready)",
		},
	)

	HoldoutAccuracy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glucoscreen_holdout_accuracy",
			Help: "Classifier accuracy on the held-out split",
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(AssessmentsTotal)
		prometheus.MustRegister(DecisionMargin)
		prometheus.MustRegister(AdviceLines)
		prometheus.MustRegister(DocumentExtractionsTotal)
		prometheus.MustRegister(ExtractionCacheTotal)
		prometheus.MustRegister(RateLimitBlocksTotal)
		prometheus.MustRegister(PipelineState)
		prometheus.MustRegister(HoldoutAccuracy)
	})
}

// PrometheusHandler serves the default registry in the exposition format
func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
