package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	RaffleEntryTotal           = "raffle_entries_total"
	RaffleDrawTotal            = "raffle_draws_total"
	RaffleFulfillmentTotal     = "raffle_fulfillments_total"
	RaffleEventTotal           = "raffle_events_total"
	IndexedEventTotal          = "raffle_indexed_events_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		RaffleEntryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleEntryTotal,
			Help: "Count of raffle entries by result",
		}, []string{"result"}),
		RaffleDrawTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleDrawTotal,
			Help: "Count of performUpkeep calls by result",
		}, []string{"result"}),
		RaffleFulfillmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleFulfillmentTotal,
			Help: "Count of randomness deliveries by result",
		}, []string{"result"}),
		RaffleEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RaffleEventTotal,
			Help: "Count of published raffle events",
		}, []string{"type"}),
		IndexedEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: IndexedEventTotal,
			Help: "Count of raffle events stored by the indexer",
		}, []string{"type"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
	}
)

// ResultLabel maps an error to the result label of the raffle counters.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}

	return "rejected"
}
