package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Manager handles configuration with atomic updates.
type Manager struct {
	Service   Service
	current   atomic.Value // stores *Config
	sources   []Source
	reloadMu  sync.Mutex
	closeOnce sync.Once
}

// NewManager creates a new configuration manager.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load loads configuration from sources and stores it atomically.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.reloadMu.Lock()
	m.sources = append([]Source(nil), sources...)
	m.reloadMu.Unlock()

	config, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(config)
	return config, nil
}

// Get returns the current configuration atomically.
func (m *Manager) Get() *Config {
	val := m.current.Load()
	if val == nil {
		return nil
	}
	config, ok := val.(*Config)
	if !ok {
		return nil
	}
	return config
}

// Reload forces a configuration reload from all sources.
func (m *Manager) Reload(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	newConfig, err := m.Service.Load(ctx, m.sources...)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.current.Store(newConfig)
	return nil
}

// Close releases all configuration sources.
func (m *Manager) Close() error {
	var closeErr error
	m.closeOnce.Do(func() {
		m.reloadMu.Lock()
		defer m.reloadMu.Unlock()
		for _, source := range m.sources {
			if source == nil {
				continue
			}
			if err := source.Close(); err != nil && closeErr == nil {
				closeErr = fmt.Errorf("failed to close source %s: %w", source.Type(), err)
			}
		}
	})
	return closeErr
}
