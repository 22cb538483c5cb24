// internal/state/mock.go
package state

import (
	"encoding/json"
	"errors"
	"sync"
)

// ErrMockLoad is returned by Mock.Load when load failures are enabled.
var ErrMockLoad = errors.New("mock load failure")

// Mock is an in-memory test double for Manager.
// Saves are applied immediately.
type Mock struct {
	mu        sync.Mutex
	values    map[string][]byte
	saves     map[string]int
	failSaves bool
	failLoads bool
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{
		values: make(map[string][]byte),
		saves:  make(map[string]int),
	}
}

func (m *Mock) Load(key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads {
		return false, ErrMockLoad
	}
	data, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *Mock) Save(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[key]++
	if m.failSaves {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.values[key] = data
}

func (m *Mock) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Mock) Flush() error { return nil }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Put stores a value as if it had been persisted by an earlier run.
func (m *Mock) Put(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	m.values[key] = data
	m.mu.Unlock()
}

// Raw returns the stored JSON for key, or nil.
func (m *Mock) Raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// SaveCount returns how many times key was saved.
func (m *Mock) SaveCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[key]
}

// SetFailSaves makes subsequent saves drop their value.
func (m *Mock) SetFailSaves(fail bool) {
	m.mu.Lock()
	m.failSaves = fail
	m.mu.Unlock()
}

// SetFailLoads makes subsequent loads return ErrMockLoad.
func (m *Mock) SetFailLoads(fail bool) {
	m.mu.Lock()
	m.failLoads = fail
	m.mu.Unlock()
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
