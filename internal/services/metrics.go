package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// dispatchTotal counts receive outcomes: ok, partial, already_processed, error.
	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoresponder_dispatch_total",
			Help: "Dispatch outcomes by status.",
		},
		[]string{"status"},
	)

	// channelSends counts channel attempts by channel and result
	// (success, failure, timeout, not_configured).
	channelSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoresponder_channel_sends_total",
			Help: "Confirmation sends by channel and result.",
		},
		[]string{"channel", "result"},
	)

	channelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autoresponder_channel_send_seconds",
			Help:    "Duration of confirmation sends in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	// raceLost counts inserts that found the fingerprint already recorded
	// after both channels had been invoked.
	raceLost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autoresponder_ledger_race_lost_total",
			Help: "Ledger inserts lost to a concurrent request with the same fingerprint.",
		},
	)
)

func init() {
	prometheus.MustRegister(dispatchTotal, channelSends, channelLatency, raceLost)
}
