package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct {
	noopMetrics
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}

func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }

func newEngine(m Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/reports/:id", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := &mockMetrics{}
	r := newEngine(m)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/abc", nil))

	assert.Equal(t, 1, m.requestCalls)
	assert.Equal(t, "/reports/:id", m.requestEndpoint)
	assert.Equal(t, http.StatusCreated, m.requestStatus)
	assert.Equal(t, 1, m.durationCalls)
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	m := &mockMetrics{}
	r := newEngine(m)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	assert.Equal(t, unmatchedEndpoint, m.requestEndpoint)
	assert.Equal(t, http.StatusNotFound, m.requestStatus)
}

func TestHTTPStatusBucket(t *testing.T) {
	tests := map[int]string{101: "1xx", 200: "2xx", 302: "3xx", 400: "4xx", 413: "4xx", 500: "5xx"}
	for code, want := range tests {
		assert.Equal(t, want, httpStatusBucket(code), code)
	}
}

func TestPrometheusProviderExposition(t *testing.T) {
	p := NewProvider(true)
	require.IsType(t, &PrometheusProvider{}, p)

	p.IncRequestsTotal("/upload", 200)
	p.IncUploads(UploadOK)
	p.IncChartsMissing("top-cities")
	p.ObserveBuildDuration(120 * time.Millisecond)
	p.IncStoreHits()

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(text, `instviz_requests_total{endpoint="/upload",status="2xx"} 1`))
	assert.True(t, strings.Contains(text, `instviz_uploads_total{result="ok"} 1`))
	assert.True(t, strings.Contains(text, `instviz_charts_missing_total{chart="top-cities"} 1`))
	assert.True(t, strings.Contains(text, "instviz_report_build_seconds_count 1"))
}

func TestProvidersDoNotShareRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewProvider(true)
		NewProvider(true)
	})
}

func TestDisabledProvider(t *testing.T) {
	p := NewProvider(false)
	assert.IsType(t, &noopMetrics{}, p)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
