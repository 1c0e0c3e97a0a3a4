package store

import (
	"context"

	"github.com/viant/aura/internal/collection"
)

// KeyValue is the storage capability a Store is built on. Implementations must
// apply each Set, Delete and Apply call as one unit: a concurrent Get observes
// either none or all of its keys changed.
type KeyValue interface {
	// Get returns the values of the requested keys that are present.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	// Apply sets values and removes deleted keys in one batch.
	Apply(ctx context.Context, values map[string]string, deleted []string) error
}

type memory struct {
	values *collection.SyncMap[string, string]
}

func (m *memory) Get(_ context.Context, keys ...string) (map[string]string, error) {
	snapshot := m.values.Snapshot()
	ret := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := snapshot[key]; ok {
			ret[key] = value
		}
	}
	return ret, nil
}

func (m *memory) Set(_ context.Context, values map[string]string) error {
	m.values.Update(func(current map[string]string) {
		for k, v := range values {
			current[k] = v
		}
	})
	return nil
}

func (m *memory) Apply(_ context.Context, values map[string]string, deleted []string) error {
	m.values.Update(func(current map[string]string) {
		for k, v := range values {
			current[k] = v
		}
		for _, key := range deleted {
			delete(current, key)
		}
	})
	return nil
}

func (m *memory) Delete(_ context.Context, keys ...string) error {
	m.values.Delete(keys...)
	return nil
}

// NewMemory returns an in-process KeyValue.
func NewMemory() KeyValue {
	return &memory{values: collection.NewSyncMap[string, string]()}
}
