package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager handles configuration loading and hot-reload.
// It uses atomic pointer swaps to ensure thread-safe config updates.
// A reload never touches clients built from an older snapshot.
type Manager struct {
	config  atomic.Pointer[Config]
	status  atomic.Pointer[Status]
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu       sync.Mutex
	onChange []func(*Config)
}

// Status describes the currently loaded snapshot.
type Status struct {
	Path        string
	Checksum    string
	LoadedAt    time.Time
	ReloadCount uint64
}

// NewManager creates a new configuration manager.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, data, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		path:   path,
		logger: logger,
	}
	m.store(cfg, data)

	return m, nil
}

// Get returns the current configuration.
// This is safe to call concurrently from multiple goroutines.
func (m *Manager) Get() *Config {
	return m.config.Load()
}

// Status returns metadata about the current snapshot.
func (m *Manager) Status() Status {
	return *m.status.Load()
}

// OnChange registers a callback to be invoked when configuration changes.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Watch starts watching the configuration file for changes.
// It debounces rapid changes and reloads configuration atomically.
// The directory is watched so that editors replacing the file are noticed.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go m.watchLoop(ctx)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context) {
	// Debounce timer to avoid rapid reloads
	const debounceDelay = 500 * time.Millisecond
	var debounceTimer *time.Timer
	target := filepath.Clean(m.path)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = m.watcher.Close()
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, func() {
					_ = m.Reload()
				})
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("config watcher error", "error", err)
		}
	}
}

// Reload re-reads the file. On failure the current snapshot is kept.
func (m *Manager) Reload() error {
	newCfg, data, err := loadFile(m.path)
	if err != nil {
		m.logger.Error("failed to reload config, keeping current",
			"error", err,
		)
		return err
	}

	// Atomic swap
	m.store(newCfg, data)
	m.logger.Info("configuration reloaded successfully",
		"path", m.path,
		"base_url", newCfg.API.BaseURL,
	)

	m.mu.Lock()
	listeners := append([]func(*Config){}, m.onChange...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(newCfg)
	}
	return nil
}

func (m *Manager) store(cfg *Config, data []byte) {
	sum := sha256.Sum256(data)
	var count uint64 = 1
	if prev := m.status.Load(); prev != nil {
		count = prev.ReloadCount + 1
	}
	m.config.Store(cfg)
	m.status.Store(&Status{
		Path:        m.path,
		Checksum:    hex.EncodeToString(sum[:]),
		LoadedAt:    time.Now(),
		ReloadCount: count,
	})
}

// Close stops the configuration watcher.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
