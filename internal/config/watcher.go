package config

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// defaultWatchInterval is how often a [Watcher] fingerprints its sources.
const defaultWatchInterval = 2 * time.Second

// ChangeFunc receives the previous and the new config together with what
// changed between them. On a scenario or catalog file edit old and new carry
// the same values and only the file flags of d are set.
type ChangeFunc func(old, new *Config, d ConfigDiff)

// fingerprint identifies the content of one watched file. The zero value
// stands for a file that does not exist or is not configured.
type fingerprint struct {
	sum    [sha256.Size]byte
	exists bool
}

// sources are the fingerprints of everything a world build reads from disk.
type sources struct {
	config, catalog, scenario fingerprint
}

// Watcher polls the config file and the catalog and scenario files it
// references. Any content change is reported through a [ChangeFunc]; an
// invalid config edit is logged and the current config is kept.
type Watcher struct {
	path     string
	interval time.Duration
	override func(*Config)
	onChange ChangeFunc

	mu      sync.Mutex
	current *Config
	prints  sources

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the poll interval. Default: 2s.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithOverride applies fn to every config the watcher loads, before the
// referenced files are fingerprinted. Use it for command-line overrides.
func WithOverride(fn func(*Config)) WatcherOption {
	return func(w *Watcher) { w.override = fn }
}

// NewWatcher loads path, fingerprints it and the files it references, and
// starts polling. The initial config must be valid; missing catalog or
// scenario files are tolerated until they appear.
func NewWatcher(path string, onChange ChangeFunc, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: defaultWatchInterval,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}

	data, cfgPrint, err := readFingerprint(path)
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	cfg, err := w.parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	catalog, scenario, err := referenced(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.current = cfg
	w.prints = sources{config: cfgPrint, catalog: catalog, scenario: scenario}

	go w.poll()
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop ends polling. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares fresh fingerprints against the last seen ones and reports
// the difference. onChange runs outside the lock so it may call Current.
func (w *Watcher) check() {
	data, cfgPrint, err := readFingerprint(w.path)
	if err != nil {
		slog.Warn("config watcher: cannot read config", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	old, prev := w.current, w.prints
	w.mu.Unlock()

	next := old
	if cfgPrint != prev.config {
		cfg, err := w.parse(data)
		if err != nil {
			slog.Warn("config watcher: invalid config, keeping current", "path", w.path, "err", err)
			w.mu.Lock()
			w.prints.config = cfgPrint
			w.mu.Unlock()
			return
		}
		next = cfg
	}

	catalog, scenario, err := referenced(next)
	if err != nil {
		slog.Warn("config watcher: cannot read referenced file", "err", err)
		return
	}

	d := Diff(old, next)
	d.CatalogFileChanged = catalog != prev.catalog
	d.ScenarioFileChanged = scenario != prev.scenario

	w.mu.Lock()
	w.current = next
	w.prints = sources{config: cfgPrint, catalog: catalog, scenario: scenario}
	w.mu.Unlock()

	if d.IsZero() {
		return
	}
	slog.Info("config watcher: change detected",
		"config", cfgPrint != prev.config,
		"catalog_file", d.CatalogFileChanged,
		"scenario_file", d.ScenarioFileChanged,
	)
	if w.onChange != nil {
		w.onChange(old, next, d)
	}
}

func (w *Watcher) parse(data []byte) (*Config, error) {
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if w.override != nil {
		w.override(cfg)
	}
	return cfg, nil
}

// referenced fingerprints the catalog and scenario files cfg names.
func referenced(cfg *Config) (catalog, scenario fingerprint, err error) {
	if catalog, err = fileFingerprint(cfg.Catalog.Path); err != nil {
		return fingerprint{}, fingerprint{}, err
	}
	if scenario, err = fileFingerprint(cfg.Scenario.Path); err != nil {
		return fingerprint{}, fingerprint{}, err
	}
	return catalog, scenario, nil
}

// fileFingerprint returns the zero fingerprint for an empty path or a file
// that does not exist.
func fileFingerprint(path string) (fingerprint, error) {
	if path == "" {
		return fingerprint{}, nil
	}
	_, fp, err := readFingerprint(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fingerprint{}, nil
	}
	return fp, err
}

func readFingerprint(path string) ([]byte, fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fingerprint{}, err
	}
	return data, fingerprint{sum: sha256.Sum256(data), exists: true}, nil
}
