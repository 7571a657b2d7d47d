package semsearch

import (
	"log/slog"

	"github.com/hupe1980/semsearch/codec"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/query"
)

type options struct {
	codec            codec.Codec
	cacheEntries     int
	metricsCollector MetricsCollector
	logger           *Logger
	excerpts         excerpt.Store
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used by Encode.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCacheEntries sets the capacity of the result cache. A negative value
// disables caching; zero selects query.DefaultCacheEntries.
func WithCacheEntries(n int) Option {
	return func(o *options) {
		o.cacheEntries = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &semsearch.BasicMetricsCollector{}
//	s, _ := semsearch.Open(ctx, store, files, semsearch.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithExcerptStore serves excerpts from s instead of the docs file. The
// engine takes ownership of s and closes it on Close.
func WithExcerptStore(s excerpt.Store) Option {
	return func(o *options) {
		o.excerpts = s
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		cacheEntries:     query.DefaultCacheEntries,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
