package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promSpotPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "shm",
		Name:      "spot_price",
		Help:      "SHM spot price by fiat currency",
	}, []string{"currency"})
	promActivationProbability = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "shm",
		Name:      "activation_probability",
		Help:      "Daily probability that a standby node is selected",
	})
	promRewardPerActivation = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "shm",
		Name:      "reward_per_activation",
	})
	promNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "shm",
		Name:      "node_count",
	}, []string{"kind"})
	promEstimates = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "shm",
		Name:      "estimates_total",
	})
	promUpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "shm",
		Name:      "upstream_failures_total",
	}, []string{"source"})
	promFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "shm",
		Name:      "fallback_parameters_total",
		Help:      "Network parameter requests answered with configured fallbacks",
	})
)
