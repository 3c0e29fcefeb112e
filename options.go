package arrayseq

import (
	"log/slog"

	"github.com/hupe1980/arrayseq/codec"
	"github.com/hupe1980/arrayseq/internal/compress"
	"github.com/hupe1980/arrayseq/resource"
)

const (
	// DefaultGrowthFactor is the fraction of the current capacity added on
	// each reallocation.
	DefaultGrowthFactor = 1.0 / 16

	// DefaultBufferSize is the byte budget of a buffered build batch.
	DefaultBufferSize = 4 << 20

	// DefaultPrintThreshold is the element count above which String summarises.
	DefaultPrintThreshold = 6
)

type config struct {
	growth           float64
	bufferSize       int
	printThreshold   int
	logger           *Logger
	metricsCollector MetricsCollector
	rc               *resource.Controller
}

// Option configures sequence construction and loading.
//
// Sequences derived from another one (views, copies, operator results)
// inherit the parent's configuration.
type Option func(*config)

// WithGrowthFactor sets the over-allocation fraction used when the backing
// store grows. Values <= 0 fall back to DefaultGrowthFactor.
func WithGrowthFactor(g float64) Option {
	return func(c *config) {
		if g > 0 {
			c.growth = g
		}
	}
}

// WithBufferSize sets the batch byte budget used by FromIterator and FromSeq.
// Values <= 0 fall back to DefaultBufferSize.
func WithBufferSize(bytes int) Option {
	return func(c *config) {
		if bytes > 0 {
			c.bufferSize = bytes
		}
	}
}

// WithPrintThreshold sets the element count above which String prints only
// the first and last three elements.
func WithPrintThreshold(n int) Option {
	return func(c *config) {
		c.printThreshold = n
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
//	seq := arrayseq.New(arrayseq.WithLogger(arrayseq.NewJSONLogger(slog.LevelDebug)))
func WithLogger(logger *Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = NoopLogger()
		}
		c.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(c *config) {
		c.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &arrayseq.BasicMetricsCollector{}
//	seq := arrayseq.New(arrayseq.WithMetricsCollector(metrics))
//	// ... build ...
//	fmt.Println(metrics.GetStats().GrowCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(c *config) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		c.metricsCollector = mc
	}
}

// WithResourceController bounds backing-store memory and blob IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(c *config) {
		c.rc = rc
	}
}

func applyOptions(optFns []Option) *config {
	c := &config{
		growth:           DefaultGrowthFactor,
		bufferSize:       DefaultBufferSize,
		printThreshold:   DefaultPrintThreshold,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(c)
		}
	}
	return c
}

// Compression selects the block compression of archive payloads.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

type saveOptions struct {
	compression Compression
	codec       codec.Codec
}

// SaveOption configures Save and its file/blob variants.
type SaveOption func(*saveOptions)

// WithCompression sets the payload compression. Default: CompressionNone.
func WithCompression(c Compression) SaveOption {
	return func(o *saveOptions) {
		o.compression = c
	}
}

// WithCodec configures the codec used for section descriptors.
//
// If nil is passed, codec.Default is used. Load selects the codec recorded in
// the archive header.
func WithCodec(c codec.Codec) SaveOption {
	return func(o *saveOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

func applySaveOptions(optFns []SaveOption) saveOptions {
	o := saveOptions{
		compression: CompressionNone,
		codec:       codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
