package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/things/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "204"))
	for _, id := range []string{"1", "2"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/things/:id", "204"))

	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(PaymentDecisions.WithLabelValues("approved"))
	RecordPaymentDecision("approved")
	assert.Equal(t, before+1, testutil.ToFloat64(PaymentDecisions.WithLabelValues("approved")))

	SetInventoryLevel("white-tee-blanks", 42)
	assert.Equal(t, 42.0, testutil.ToFloat64(InventoryLevel.WithLabelValues("white-tee-blanks")))
}
