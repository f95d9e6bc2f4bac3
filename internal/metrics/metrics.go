// Package metrics exposes Prometheus collectors for HTTP traffic and the
// few domain events worth counting.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apparel"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DesignSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "design_saves_total",
			Help:      "Design saves by kind (draft, library)",
		},
		[]string{"kind"},
	)

	PaymentDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_decisions_total",
			Help:      "Payment review decisions by outcome",
		},
		[]string{"decision"},
	)

	ImageDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_deletions_total",
			Help:      "Image host deletions by outcome (ok, deferred, failed)",
		},
		[]string{"outcome"},
	)

	InventoryLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_stock",
			Help:      "Current stock of raw-material inventory items",
		},
		[]string{"item"},
	)
)

// Middleware records request count and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < 400 {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			code := strconv.Itoa(status)
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, code).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, path, code).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// RecordDesignSave counts a draft or library save.
func RecordDesignSave(kind string) { DesignSaves.WithLabelValues(kind).Inc() }

// RecordPaymentDecision counts an approve or reject.
func RecordPaymentDecision(decision string) { PaymentDecisions.WithLabelValues(decision).Inc() }

// RecordImageDeletion counts one image-host delete attempt by outcome.
func RecordImageDeletion(outcome string) { ImageDeletions.WithLabelValues(outcome).Inc() }

// SetInventoryLevel publishes the stock of one item.
func SetInventoryLevel(item string, stock int) {
	InventoryLevel.WithLabelValues(item).Set(float64(stock))
}

// ForgetInventoryItem drops the gauge series of a deleted item.
func ForgetInventoryItem(item string) { InventoryLevel.DeleteLabelValues(item) }
