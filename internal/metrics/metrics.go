package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransfersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total completed transfers",
		},
	)
	TransfersFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transfers_failed_total",
			Help: "Total rejected or failed transfer attempts",
		},
	)
	CardsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_created_total",
			Help: "Total cards issued",
		},
	)
	BlockRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "block_requests_total",
			Help: "Total card block requests",
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(TransfersTotal)
	prometheus.MustRegister(TransfersFailed)
	prometheus.MustRegister(CardsCreated)
	prometheus.MustRegister(BlockRequestsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
