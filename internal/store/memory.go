package store

import (
	"context"
	"sort"
	"sync"
)

// Memory：进程内后端，重启即丢失
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory { return &Memory{data: map[string]map[string]string{}} }

func (m *Memory) Load(_ context.Context, bucket string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[bucket]))
	for k, v := range m.data[bucket] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Put(_ context.Context, bucket, id, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.data[bucket]
	if b == nil {
		b = map[string]string{}
		m.data[bucket] = b
	}
	b[id] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, bucket, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[bucket], id)
	if len(m.data[bucket]) == 0 {
		delete(m.data, bucket)
	}
	return nil
}

func (m *Memory) Clear(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, bucket)
	return nil
}

func (m *Memory) Buckets(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for b := range m.data {
		out = append(out, b)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
