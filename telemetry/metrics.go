package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smt",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of node/value store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"store", "op"})

	opErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smt",
		Subsystem: "store",
		Name:      "operation_errors_total",
		Help:      "Count of node/value store operations that returned an error.",
	}, []string{"store", "op"})
)

// Register registers this package's collectors with reg. Call once per
// process; registering the same collectors twice on the default registerer
// panics, matching prometheus.MustRegister's own contract.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(opDuration, opErrors)
}

// InstrumentedStore wraps a Store, recording a call-duration histogram and
// an error counter per operation, labeled by store name (e.g. "nodes" or
// "values") the same way the pack's Merkle-tree-over-a-store systems
// instrument their storage layer.
type InstrumentedStore struct {
	inner Store
	name  string
}

// NewInstrumentedStore wraps inner under the given store name.
func NewInstrumentedStore(inner Store, name string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, name: name}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	opDuration.WithLabelValues(s.name, op).Observe(time.Since(start).Seconds())
	if err != nil {
		opErrors.WithLabelValues(s.name, op).Inc()
	}
}

func (s *InstrumentedStore) Get(key []byte) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(key)
	s.observe("get", start, err)
	return value, ok, err
}

func (s *InstrumentedStore) Set(key []byte, value []byte) error {
	start := time.Now()
	err := s.inner.Set(key, value)
	s.observe("set", start, err)
	return err
}

func (s *InstrumentedStore) Remove(key []byte) error {
	start := time.Now()
	err := s.inner.Remove(key)
	s.observe("remove", start, err)
	return err
}

func (s *InstrumentedStore) Contains(key []byte) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Contains(key)
	s.observe("contains", start, err)
	return ok, err
}
