package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/fetcher/client/metrics"
)

func TestCollector_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := metrics.New(reg)

	mc.Observe("GET", "example.com", 200, "ok", 10*time.Millisecond)
	mc.Observe("GET", "example.com", 200, "ok", 20*time.Millisecond)
	mc.Observe("GET", "example.com", 404, "status", 5*time.Millisecond)
	mc.Observe("POST", "", 0, "usage", time.Millisecond)

	testCases := map[string]int{
		"fetcher_requests_total":           3,
		"fetcher_errors_total":             2,
		"fetcher_request_duration_seconds": 2,
	}

	for name, exp := range testCases {
		t.Run(name, func(t *testing.T) {
			n, err := testutil.GatherAndCount(reg, name)
			if err != nil {
				t.Fatalf("gathering: %v", err)
			}
			if n != exp {
				t.Errorf("exp %d series, got %d", exp, n)
			}
		})
	}
}

func TestCollector_Nil(t *testing.T) {
	var mc *metrics.Collector
	mc.Observe("GET", "example.com", 200, "ok", time.Millisecond)
}
