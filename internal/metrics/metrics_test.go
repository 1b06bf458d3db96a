package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsStatus(t *testing.T) {
	h := Middleware(func(*http.Request) string { return "/teapot" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))

	assert.Equal(t, before+1, after)
}

func TestOutcome(t *testing.T) {
	bad := errors.New("bad input")
	isBad := func(err error) bool { return errors.Is(err, bad) }

	assert.Equal(t, "ok", Outcome(nil, isBad))
	assert.Equal(t, "rejected", Outcome(bad, isBad))
	assert.Equal(t, "failed", Outcome(errors.New("disk full"), isBad))
}
