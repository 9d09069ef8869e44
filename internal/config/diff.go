package config

// ConfigDiff describes what changed between two configs.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// CatalogChanged is true when the catalog path changed.
	CatalogChanged bool

	// ScenarioChanged is true when any scenario setting changed.
	ScenarioChanged bool

	// CatalogFileChanged and ScenarioFileChanged are true when the content
	// of the referenced file changed, appeared or disappeared. [Diff] never
	// sets them; the [Watcher] does.
	CatalogFileChanged  bool
	ScenarioFileChanged bool

	// TelemetryChanged is true when any telemetry setting changed. Telemetry
	// providers are installed once, so these changes need a restart.
	TelemetryChanged bool
}

// RequiresRebuild reports whether the world must be regenerated to reflect
// the new config.
func (d ConfigDiff) RequiresRebuild() bool {
	return d.CatalogChanged || d.ScenarioChanged || d.CatalogFileChanged || d.ScenarioFileChanged
}

// IsZero reports whether nothing changed.
func (d ConfigDiff) IsZero() bool {
	return d == ConfigDiff{}
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	d.CatalogChanged = old.Catalog != new.Catalog
	d.ScenarioChanged = old.Scenario != new.Scenario
	d.TelemetryChanged = old.Telemetry != new.Telemetry

	return d
}
