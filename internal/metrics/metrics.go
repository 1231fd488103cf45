package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bicle"

var (
	BlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_mined_total",
		Help:      "Blocks appended to the ledger.",
	})

	EmptyMines = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mine_empty_total",
		Help:      "Mining passes that found no eligible candidate.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Submissions by result.",
	}, []string{"result"})

	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Failed store loads or saves by store.",
	}, []string{"store"})

	VerifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verify_failures_total",
		Help:      "Chain verifications that found an integrity violation.",
	})

	ChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chain_blocks",
		Help:      "Number of blocks in the ledger, genesis included.",
	})

	PendingSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_entries",
		Help:      "Submissions waiting to be mined.",
	})

	HistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broadcast_history_entries",
		Help:      "Links in the dedup index.",
	})
)

// Store names used as label values
const (
	StoreBlocks    = "blocks"
	StoreBroadcast = "broadcast"
	StorePending   = "pending"
)
