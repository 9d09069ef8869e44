// Package observe provides application-wide observability primitives for
// Sophont: OpenTelemetry metrics, distributed tracing and trace-aware
// structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] and [WriteText] renders the
// gathered families in the Prometheus text format. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
//
// [*Metrics] implements the observer hooks of the definition registry and the
// collation states, so wiring it in is a matter of passing it as an option.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/sophont/pkg/collate"
	"github.com/MrWong99/sophont/pkg/definition"
)

// meterName is the instrumentation scope name used for all Sophont metrics.
const meterName = "github.com/MrWong99/sophont"

// Compile-time assertions that Metrics can observe the core packages.
var (
	_ definition.Observer = (*Metrics)(nil)
	_ collate.Observer    = (*Metrics)(nil)
)

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Registry ---

	// InternRequests counts intern calls. Use with attributes:
	//   attribute.String("kind", ...), attribute.String("result", "hit"|"miss")
	InternRequests metric.Int64Counter

	// --- Ledgers and collation ---

	// Acquisitions counts ledger inserts. Use with attribute:
	//   attribute.String("state", ...)
	Acquisitions metric.Int64Counter

	// CollationDuration tracks the latency of a full recompute.
	CollationDuration metric.Float64Histogram

	// CollationRecords tracks how many ledger records a recompute folded.
	CollationRecords metric.Int64Histogram

	// --- World generation ---

	// CharactersBuilt counts characters built from a scenario. Use with
	// attributes:
	//   attribute.String("species", ...), attribute.String("status", ...)
	CharactersBuilt metric.Int64Counter

	// ActiveBuilds tracks the number of characters currently being built.
	ActiveBuilds metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// in-memory folds.
var latencyBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1,
}

// recordBuckets defines histogram bucket boundaries for ledger sizes.
var recordBuckets = []float64{
	1, 5, 10, 50, 100, 500, 1000, 5000, 10000,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Counters.
	if met.InternRequests, err = m.Int64Counter("sophont.registry.intern",
		metric.WithDescription("Total definition intern requests by kind and result."),
	); err != nil {
		return nil, err
	}
	if met.Acquisitions, err = m.Int64Counter("sophont.ledger.acquisitions",
		metric.WithDescription("Total ledger acquisitions by state."),
	); err != nil {
		return nil, err
	}
	if met.CharactersBuilt, err = m.Int64Counter("sophont.worldgen.characters",
		metric.WithDescription("Total characters built by species and status."),
	); err != nil {
		return nil, err
	}

	// Histograms.
	if met.CollationDuration, err = m.Float64Histogram("sophont.collation.duration",
		metric.WithDescription("Latency of a full collation recompute."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CollationRecords, err = m.Int64Histogram("sophont.collation.records",
		metric.WithDescription("Ledger records folded per collation recompute."),
		metric.WithExplicitBucketBoundaries(recordBuckets...),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveBuilds, err = m.Int64UpDownCounter("sophont.worldgen.active_builds",
		metric.WithDescription("Number of characters currently being built."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Interned implements [definition.Observer].
func (m *Metrics) Interned(kind definition.Kind, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.InternRequests.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("result", result),
		),
	)
}

// Acquired implements [collate.Observer].
func (m *Metrics) Acquired(state string) {
	m.Acquisitions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("state", state)),
	)
}

// Collated implements [collate.Observer].
func (m *Metrics) Collated(ctx context.Context, state string, records, _ int, took time.Duration) {
	attrs := metric.WithAttributes(attribute.String("state", state))
	m.CollationDuration.Record(ctx, took.Seconds(), attrs)
	m.CollationRecords.Record(ctx, int64(records), attrs)
}

// RecordCharacterBuilt is a convenience method that records a built
// character with the standard attribute set.
func (m *Metrics) RecordCharacterBuilt(ctx context.Context, species, status string) {
	m.CharactersBuilt.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("species", species),
			attribute.String("status", status),
		),
	)
}
