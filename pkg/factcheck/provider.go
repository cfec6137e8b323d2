package factcheck

import (
	"context"
	"sync"

	"debatewatch-server/pkg/errors"

	"github.com/sirupsen/logrus"
)

// ProviderManager keeps the registry of verification providers and hands
// out the provider for the configured mode, falling back to the default
// when the requested one is missing
type ProviderManager struct {
	logger          *logrus.Entry
	providers       map[string]Provider
	defaultProvider string
	mutex           sync.RWMutex
}

// NewProviderManager creates a provider registry
func NewProviderManager(logger *logrus.Logger, defaultProvider string) *ProviderManager {
	return &ProviderManager{
		logger:          logger.WithField("component", "factcheck_providers"),
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider initializes and registers a provider. Providers that
// fail to initialize are not registered.
func (m *ProviderManager) RegisterProvider(ctx context.Context, provider Provider) error {
	if provider == nil {
		return errors.New("cannot register nil provider")
	}

	if err := provider.Initialize(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize verification provider",
			map[string]interface{}{"provider": provider.Name()})
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	name := provider.Name()
	m.providers[name] = provider
	m.logger.WithField("provider", name).Info("Registered verification provider")

	return nil
}

// GetProvider returns the named provider, falling back to the default
// provider when the requested one is not registered
func (m *ProviderManager) GetProvider(name string) (Provider, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if provider, exists := m.providers[name]; exists {
		return provider, nil
	}

	if provider, exists := m.providers[m.defaultProvider]; exists {
		m.logger.WithFields(logrus.Fields{
			"requested": name,
			"fallback":  m.defaultProvider,
		}).Debug("Requested provider not available, using default")
		return provider, nil
	}

	return nil, errors.Wrap(errors.ErrNoProviderAvailable, "no verification provider registered",
		map[string]interface{}{"requested": name})
}

// HasProvider reports whether a provider is registered under the name
func (m *ProviderManager) HasProvider(name string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exists := m.providers[name]
	return exists
}

// ProviderNames returns the registered provider names
func (m *ProviderManager) ProviderNames() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}
