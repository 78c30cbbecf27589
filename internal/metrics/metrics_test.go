package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func counterValue(registry *prometheus.Registry, name string) float64 {
	families, err := registry.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a metrics manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithRegistry(registry), WithNamespace("test"))

		Convey("When recording searches", func() {
			manager.RecordSearch("hybrid", "success", 10*time.Millisecond)
			manager.RecordSearch("database", "success with reduced results", time.Millisecond)

			Convey("Then the search counter is incremented", func() {
				So(counterValue(registry, "test_searches_total"), ShouldEqual, 2)
			})
		})

		Convey("When recording skips and timeouts", func() {
			manager.RecordSkipped("malformed")
			manager.RecordSkipped("malformed")
			manager.RecordEnrichmentTimeout()

			Convey("Then both counters move", func() {
				So(counterValue(registry, "test_candidates_skipped_total"), ShouldEqual, 2)
				So(counterValue(registry, "test_enrichment_timeouts_total"), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP requests and outreach", func() {
			manager.RecordHTTPRequest(http.MethodPost, "/api/v1/search", http.StatusOK, time.Millisecond)
			manager.RecordOutreach("email", "template")
			manager.RecordStage("filter", time.Millisecond)

			Convey("Then the handler exposes them", func() {
				rec := httptest.NewRecorder()
				manager.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(strings.Contains(body, `test_http_requests_total{endpoint="/api/v1/search",method="POST",status_code="200"} 1`), ShouldBeTrue)
				So(strings.Contains(body, `test_outreach_messages_total{method="template",type="email"} 1`), ShouldBeTrue)
				So(strings.Contains(body, "test_stage_duration_seconds_bucket"), ShouldBeTrue)
			})
		})
	})

	Convey("Given two managers with default options", t, func() {
		Convey("Then they do not collide on registration", func() {
			So(func() {
				NewManager()
				NewManager()
			}, ShouldNotPanic)
		})
	})
}
