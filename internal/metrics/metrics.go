package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordCheckoutSession(outcome string)
	RecordDownload(outcome string)
	RecordWebhookEvent(eventType, outcome string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordCheckoutSession(outcome string)          {}
func (m *NoOpMetrics) RecordDownload(outcome string)                 {}
func (m *NoOpMetrics) RecordWebhookEvent(eventType, outcome string)  {}
func (m *NoOpMetrics) Handler() http.Handler                         { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// For now, keep using no-op metrics
	// In a full implementation, this would initialize Prometheus metrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordCheckoutSession records a checkout session creation attempt by outcome
func RecordCheckoutSession(outcome string) {
	globalMetrics.RecordCheckoutSession(outcome)
}

// RecordDownload records a download gate decision by outcome
func RecordDownload(outcome string) {
	globalMetrics.RecordDownload(outcome)
}

// RecordWebhookEvent records a webhook delivery by event type and outcome
func RecordWebhookEvent(eventType, outcome string) {
	globalMetrics.RecordWebhookEvent(eventType, outcome)
}
