package cart

import (
	"context"
	"sync"
)

// MemoryProvider keeps serialized carts in process memory. It backs the
// service when Redis is disabled and is used throughout the tests.
type MemoryProvider struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{carts: map[string][]byte{}}
}

func (p *MemoryProvider) ForSession(sessionID string) Storage {
	return &memoryStorage{provider: p, sessionID: sessionID}
}

// Raw returns the stored document for sessionID.
func (p *MemoryProvider) Raw(sessionID string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.carts[sessionID]
	return data, ok
}

type memoryStorage struct {
	provider  *MemoryProvider
	sessionID string
}

func (s *memoryStorage) Load(ctx context.Context) (Cart, bool, error) {
	data, ok := s.provider.Raw(s.sessionID)
	if !ok {
		return Cart{}, false, nil
	}
	c, err := decode(data)
	if err != nil {
		return Cart{}, false, err
	}
	return c, true, nil
}

func (s *memoryStorage) Save(ctx context.Context, c Cart) error {
	data, err := encode(c)
	if err != nil {
		return err
	}
	s.provider.mu.Lock()
	s.provider.carts[s.sessionID] = data
	s.provider.mu.Unlock()
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context) error {
	s.provider.mu.Lock()
	delete(s.provider.carts, s.sessionID)
	s.provider.mu.Unlock()
	return nil
}
