// Package config provides the configuration schema, loader, diffing and file
// watcher for the Sophont world generator.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to an [slog.Level]. Unknown and empty levels map to
// [slog.LevelInfo].
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// TraceExporter selects where spans are sent.
type TraceExporter string

const (
	TraceNone   TraceExporter = "none"
	TraceStdout TraceExporter = "stdout"
	TraceOTLP   TraceExporter = "otlp"
)

// IsValid reports whether e is a recognised trace exporter.
func (e TraceExporter) IsValid() bool {
	switch e {
	case TraceNone, TraceStdout, TraceOTLP:
		return true
	}
	return false
}

// DefaultWorkers is the number of characters built concurrently when
// [ScenarioConfig.Workers] is zero.
const DefaultWorkers = 4

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds process-wide settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// CatalogConfig locates the name catalog.
type CatalogConfig struct {
	// Path is a catalog YAML file. When empty, the embedded default catalog
	// is used.
	Path string `yaml:"path"`
}

// ScenarioConfig controls world generation.
type ScenarioConfig struct {
	// Path is the scenario YAML file to build. The -scenario flag overrides
	// it.
	Path string `yaml:"path"`

	// Workers bounds the number of characters built concurrently.
	// Default: [DefaultWorkers].
	Workers int `yaml:"workers"`

	// StrictExpression rejects genes and phenes that express characteristics
	// outside a character's species genotype.
	StrictExpression bool `yaml:"strict_expression"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	// ServiceName is reported in telemetry. Default: "sophont".
	ServiceName string `yaml:"service_name"`

	// TraceExporter selects the span exporter. Default: none.
	TraceExporter TraceExporter `yaml:"trace_exporter"`

	// OTLPEndpoint is the collector URL used by the otlp exporter.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// DumpMetrics writes the collected metrics in Prometheus text format to
	// stderr after each build.
	DumpMetrics bool `yaml:"dump_metrics"`
}

// WorkerCount returns the configured worker count or [DefaultWorkers].
func (s ScenarioConfig) WorkerCount() int {
	if s.Workers <= 0 {
		return DefaultWorkers
	}
	return s.Workers
}
