package redeem

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "licensegate_redemptions_total",
		Help: "Redemption attempts by front-end source and outcome.",
	}, []string{"source", "outcome"})

	oracleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "licensegate_oracle_request_seconds",
		Help:    "Latency of license oracle verification calls.",
		Buckets: prometheus.DefBuckets,
	})
)
