package store

import (
	"bytes"
	"context"
	"sync"

	"onenight/game"
)

// Memory is the single-process store. Blobs are kept serialized so
// readers always get their own copy.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	revs     map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		sessions: map[string][]byte{},
		revs:     map[string]int64{},
	}
}

func (m *Memory) Get(ctx context.Context, roomCode string) (*game.Session, error) {
	m.mu.RLock()
	blob, ok := m.sessions[roomCode]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return game.ReadSession(bytes.NewReader(blob))
}

func (m *Memory) Put(ctx context.Context, s *game.Session) error {
	var buf bytes.Buffer
	if err := s.WriteOut(&buf); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rev, ok := m.revs[s.RoomCode]; ok && rev >= s.Revision {
		return ErrStale
	}
	m.sessions[s.RoomCode] = buf.Bytes()
	m.revs[s.RoomCode] = s.Revision
	return nil
}

func (m *Memory) Delete(ctx context.Context, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, roomCode)
	delete(m.revs, roomCode)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
