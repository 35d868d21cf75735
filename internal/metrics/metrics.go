package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecards_gateway_requests_total",
			Help: "Count of gateway requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviecards_gateway_request_duration_seconds",
			Help:    "Time taken to serve a gateway request",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
	RemoteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviecards_gateway_remote_failures_total",
			Help: "Count of failed calls to the moviecards service",
		},
		[]string{"resource", "kind"}, // kind: not_found, remote
	)
)

func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{RequestCounter, RequestDuration, RemoteFailures} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
