package telemetry

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-level zerolog.Logger used by LoggingStore when one
// isn't supplied explicitly, in the same init-time
// `zerolog.New(...).Level(...)` style the pack's trie/ledger node stores use
// for their own store-layer logging.
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// slowCallThreshold is the duration above which LoggingStore logs a
// successful call at warn level even though it didn't error.
const slowCallThreshold = 50 * time.Millisecond

// LoggingStore wraps a Store, logging every error it returns and any call
// that runs longer than slowCallThreshold. Successful, fast calls are not
// logged to keep steady-state operation quiet.
type LoggingStore struct {
	inner Store
	name  string
	log   zerolog.Logger
}

// NewLoggingStore wraps inner, tagging its log lines with name (e.g.
// "nodes" or "values" to distinguish the tree's two stores).
func NewLoggingStore(inner Store, name string) *LoggingStore {
	return &LoggingStore{inner: inner, name: name, log: Logger}
}

// WithLogger returns a copy of s that logs through logger instead of the
// package-level Logger.
func (s *LoggingStore) WithLogger(logger zerolog.Logger) *LoggingStore {
	return &LoggingStore{inner: s.inner, name: s.name, log: logger}
}

func (s *LoggingStore) Get(key []byte) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(key)
	s.report("get", key, time.Since(start), err)
	return value, ok, err
}

func (s *LoggingStore) Set(key []byte, value []byte) error {
	start := time.Now()
	err := s.inner.Set(key, value)
	s.report("set", key, time.Since(start), err)
	return err
}

func (s *LoggingStore) Remove(key []byte) error {
	start := time.Now()
	err := s.inner.Remove(key)
	s.report("remove", key, time.Since(start), err)
	return err
}

func (s *LoggingStore) Contains(key []byte) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Contains(key)
	s.report("contains", key, time.Since(start), err)
	return ok, err
}

func (s *LoggingStore) report(op string, key []byte, elapsed time.Duration, err error) {
	switch {
	case err != nil:
		s.log.Error().Err(err).Str("store", s.name).Str("op", op).Hex("key", key).Dur("elapsed", elapsed).Msg("store operation failed")
	case elapsed > slowCallThreshold:
		s.log.Warn().Str("store", s.name).Str("op", op).Hex("key", key).Dur("elapsed", elapsed).Msg("slow store operation")
	}
}
