package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopcore/internal/handler"
	"shopcore/internal/metrics"
	"shopcore/internal/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const testAPIKey = "test-api-key"

// newTestRouter mounts handlers whose services are never reached by the
// requests below: each one is stopped by middleware or request validation.
func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	return New(Handlers{
		Cart:     handler.NewCartHandler(nil, logger),
		Checkout: handler.NewCheckoutHandler(nil, logger),
		Order:    handler.NewOrderHandler(nil, logger),
		Payment:  handler.NewPaymentHandler(nil, nil, validation.New(), logger),
	}, testAPIKey, metrics.New(prometheus.NewRegistry()), logger)
}

func TestRouter(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		apiKey         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Health without API key",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name:           "Metrics without API key",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
			expectedBody:   "shopcore_http_requests_total",
		},
		{
			name:           "Orders require API key",
			method:         http.MethodGet,
			path:           "/api/orders/00000000-0000-0000-0000-000000000000",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed order id",
			method:         http.MethodGet,
			path:           "/api/orders/abc",
			apiKey:         testAPIKey,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Intent validation",
			method:         http.MethodPost,
			path:           "/api/payments/intent",
			body:           `{}`,
			apiKey:         testAPIKey,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "order_id",
		},
		{
			name:           "Checkout rejects malformed account id",
			method:         http.MethodPost,
			path:           "/api/checkout",
			body:           `{}`,
			apiKey:         testAPIKey,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Cart line update with malformed cart id",
			method:         http.MethodPatch,
			path:           "/api/carts/abc/items/P001",
			body:           `{"quantity":2}`,
			apiKey:         testAPIKey,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Cart line removal with malformed cart id",
			method:         http.MethodDelete,
			path:           "/api/carts/abc/items/P001",
			apiKey:         testAPIKey,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown route",
			method:         http.MethodGet,
			path:           "/api/products",
			apiKey:         testAPIKey,
			expectedStatus: http.StatusNotFound,
		},
	}

	r := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			if strings.HasSuffix(tt.path, "/checkout") {
				req.Header.Set("X-Account-ID", "not-a-uuid")
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}
