// Package telemetry provides decorators over the smt package's
// NodeStore/ValueStore shape: LoggingStore for structured error/slow-call
// logging, and InstrumentedStore for Prometheus counters and latency
// histograms. Both are optional; the tree engine itself never imports this
// package.
package telemetry

// Store is the NodeStore/ValueStore shape from package smt, restated here
// so this package has no dependency on smt and can wrap any store that
// happens to satisfy it (including smt.NodeStore and smt.ValueStore
// themselves, via Go's structural typing).
type Store interface {
	Get(key []byte) (value []byte, ok bool, err error)
	Set(key []byte, value []byte) error
	Remove(key []byte) error
	Contains(key []byte) (bool, error)
}
