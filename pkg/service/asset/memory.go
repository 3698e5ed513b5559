package asset

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps assets in process memory. Used in tests and when no bucket is
// configured.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]memoryObject),
		baseURL: DefaultBaseURL,
	}
}

func (m *Memory) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = memoryObject{data: slices.Clone(data), contentType: contentType}
	return urlFor(m.baseURL, name), nil
}

func (m *Memory) Get(ctx context.Context, name string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, "", goerr.Wrap(ErrNotFound, "get asset", goerr.V(NameKey, name))
	}
	return slices.Clone(obj.data), obj.contentType, nil
}
