package imagehost

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Memory is an in-process Host.  `serve` falls back to it when no bucket is
// configured so local development works without object storage.
type Memory struct {
	BaseURL string

	mu          sync.Mutex
	objects     map[string][]byte
	destroyed   []string
	failDestroy error
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

func (m *Memory) Upload(_ context.Context, folder, filename, contentType string, body io.Reader, _ int64) (Asset, error) {
	if !ValidFolder(folder) {
		return Asset{}, ErrFolder
	}
	if !ValidContentType(contentType) {
		return Asset{}, ErrContentType
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Asset{}, err
	}
	key := objectKey(folder, filename)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return Asset{PublicID: key, URL: m.BaseURL + "/" + key}, nil
}

func (m *Memory) Destroy(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDestroy != nil {
		return m.failDestroy
	}
	delete(m.objects, publicID)
	m.destroyed = append(m.destroyed, publicID)
	return nil
}

func (m *Memory) DeleteFolder(_ context.Context, folder string) (int, error) {
	pfx := strings.Trim(folder, "/")
	if pfx == "" {
		return 0, errors.New("empty folder")
	}
	pfx += "/"
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.objects {
		if strings.HasPrefix(k, pfx) {
			delete(m.objects, k)
			m.destroyed = append(m.destroyed, k)
			n++
		}
	}
	return n, nil
}

// SetFailDestroy makes every Destroy return err until reset with nil.
func (m *Memory) SetFailDestroy(err error) {
	m.mu.Lock()
	m.failDestroy = err
	m.mu.Unlock()
}

// Put seeds an object directly.
func (m *Memory) Put(publicID string, data []byte) {
	m.mu.Lock()
	m.objects[publicID] = data
	m.mu.Unlock()
}

// Has reports whether an object is stored.
func (m *Memory) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[publicID]
	return ok
}

// Destroyed lists every id passed to a successful delete, in order.
func (m *Memory) Destroyed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroyed...)
}
