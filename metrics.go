package goRevoke

import "sync/atomic"

// MetricID defines a public type used by goRevoke APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the revocation engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the revocation engine.
	MetricLoginFailure
	// MetricAuthAccept is an exported constant or variable used by the revocation engine.
	MetricAuthAccept
	// MetricAuthReject is an exported constant or variable used by the revocation engine.
	MetricAuthReject
	// MetricRefreshSuccess is an exported constant or variable used by the revocation engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the revocation engine.
	MetricRefreshFailure
	// MetricRefreshRevokedReplay is an exported constant or variable used by the revocation engine.
	MetricRefreshRevokedReplay
	// MetricLogout is an exported constant or variable used by the revocation engine.
	MetricLogout
	// MetricRevokeUser is an exported constant or variable used by the revocation engine.
	MetricRevokeUser
	// MetricRevokeGlobal is an exported constant or variable used by the revocation engine.
	MetricRevokeGlobal
	// MetricCleanupRemoved is an exported constant or variable used by the revocation engine.
	MetricCleanupRemoved
	// MetricForbidden is an exported constant or variable used by the revocation engine.
	MetricForbidden
	// MetricStoreFailure is an exported constant or variable used by the revocation engine.
	MetricStoreFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goRevoke APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot defines a public type used by goRevoke APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a counter set honoring the enabled flag. A nil or
// disabled Metrics turns every operation into a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments a single counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add increments a counter by n; used for cleanup removal counts.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters into a map for exporters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
