// internal/state/interface.go
package state

// Store is the subset of the state manager used by the persisted stores.
type Store interface {
	Load(key string, v any) (bool, error)
	Save(key string, v any)
}

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	Store
	Delete(key string) error
	Flush() error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
