package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the treasury.
type Metrics struct {
	// --- Pools ---
	DebitPool         prometheus.Gauge
	SurplusPool       prometheus.Gauge
	CollateralBalance *prometheus.GaugeVec

	// --- Offset engine ---
	OffsetApplied prometheus.Counter
	OffsetAmount  prometheus.Counter
	OffsetSkipped prometheus.Counter

	// --- Auction scheduling ---
	AuctionsCreated *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	CyclesTotal     prometheus.Counter

	// --- Swaps ---
	SwapsTotal   prometheus.Counter
	SwapReceived prometheus.Counter

	// --- Parameter updates ---
	ParamUpdates *prometheus.CounterVec

	// --- Persistence ---
	PersistEventsWritten prometheus.Counter
	PersistBatchDur      prometheus.Histogram
	PersistBatchSize     prometheus.Histogram
	PersistErrors        *prometheus.CounterVec
	PersistLastSequence  prometheus.Gauge

	// --- Outbound publishing ---
	PublishDrops prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	cycleBuckets := []float64{
		0.000005, 0.00001, 0.000025, 0.00005, 0.0001,
		0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01,
	}

	return &Metrics{
		DebitPool: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "treasury_debit_pool",
			Help: "Current system bad debt pool",
		}),
		SurplusPool: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "treasury_surplus_pool",
			Help: "Current system surplus pool",
		}),
		CollateralBalance: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treasury_collateral_balance",
			Help: "Collateral held by the treasury per asset",
		}, []string{"asset"}),

		OffsetApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_offset_applied_total",
			Help: "Offset passes that burned stable currency",
		}),
		OffsetAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_offset_amount_total",
			Help: "Cumulative stable currency burned by the offset engine",
		}),
		OffsetSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_offset_skipped_total",
			Help: "Offset passes skipped because the burn failed",
		}),

		AuctionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_auctions_created_total",
			Help: "Auctions created, by kind",
		}, []string{"kind"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasury_cycle_duration_seconds",
			Help:    "Time to run one end-of-cycle pass",
			Buckets: cycleBuckets,
		}),
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_cycles_total",
			Help: "End-of-cycle passes executed",
		}),

		SwapsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_swaps_total",
			Help: "Collateral-to-stable swaps executed",
		}),
		SwapReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_swap_received_total",
			Help: "Cumulative stable currency received from swaps",
		}),

		ParamUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_param_updates_total",
			Help: "Parameter updates applied, by parameter",
		}, []string{"param"}),

		PersistEventsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_persist_events_written_total",
			Help: "Event rows written to the event log",
		}),
		PersistBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasury_persist_batch_duration_seconds",
			Help:    "Time to flush one event batch to Postgres",
			Buckets: prometheus.DefBuckets,
		}),
		PersistBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasury_persist_batch_size",
			Help:    "Rows per flushed event batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_persist_errors_total",
			Help: "Persistence failures, by stage",
		}, []string{"stage"}),
		PersistLastSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "treasury_persist_last_sequence",
			Help: "Highest event sequence confirmed written",
		}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "treasury_publish_drops_total",
			Help: "Outbound events dropped because the publish channel was full",
		}),
	}
}
