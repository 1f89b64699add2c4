package store

import (
	"sync"

	"fyne.io/fyne/v2"
)

// KV is the single-entry key-value storage the drawing collection lives in.
// Get reports ok=false when the key has never been written.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryKV keeps values in process memory. Used by tests and the "memory"
// backend.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// PreferencesKV stores values in the Fyne application preferences, which are
// namespaced by the application id.
type PreferencesKV struct {
	prefs fyne.Preferences
}

func NewPreferencesKV(prefs fyne.Preferences) *PreferencesKV {
	return &PreferencesKV{prefs: prefs}
}

func (p *PreferencesKV) Get(key string) (string, bool, error) {
	v := p.prefs.String(key)
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (p *PreferencesKV) Set(key, value string) error {
	p.prefs.SetString(key, value)
	return nil
}
