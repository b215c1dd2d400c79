package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// remote calls
	// ============================================
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walletcore_remote_call_duration_seconds",
			Help:    "Duration of chain RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RemoteCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_remote_call_errors_total",
			Help: "Chain RPC calls that returned an error, by kind",
		},
		[]string{"method", "kind"},
	)

	// ============================================
	// transactions
	// ============================================
	BroadcastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_broadcast_total",
			Help: "Broadcast attempts by mode and result",
		},
		[]string{"mode", "result"},
	)

	SimulateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_simulate_total",
			Help: "Simulation attempts by result",
		},
		[]string{"result"},
	)

	// ============================================
	// synchronization
	// ============================================
	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_sync_passes_total",
			Help: "Incident sync passes by result",
		},
		[]string{"result"},
	)

	IncidentsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_incidents_emitted_total",
			Help: "Newly observed incidents by type",
		},
		[]string{"type"},
	)

	SyncWatermark = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "walletcore_sync_watermark_height",
			Help: "Persisted watermark height per chain",
		},
		[]string{"chain"},
	)

	// ============================================
	// token history
	// ============================================
	HistoryEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "walletcore_history_entries_total",
		Help: "New token history entries merged into the cache",
	})

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletcore_notifications_total",
			Help: "Notification dispatch outcomes",
		},
		[]string{"result"},
	)
)
