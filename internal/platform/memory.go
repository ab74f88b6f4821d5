package platform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/models"
)

// MemoryClient is an in-process RemoteClient. Changes deploy immediately.
// It backs demo mode and tests.
type MemoryClient struct {
	mu            sync.Mutex
	distributions []*models.Distribution
	metadata      map[string]map[string]string
	latency       time.Duration
}

// NewMemoryClient creates an empty in-memory service.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{metadata: make(map[string]map[string]string)}
}

// SetLatency makes every call wait d (or until ctx is done) before acting.
func (m *MemoryClient) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// Seed adds a distribution as-is.
func (m *MemoryClient) Seed(d *models.Distribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributions = append(m.distributions, d.Clone())
}

// SeedMetadata replaces the metadata of key.
func (m *MemoryClient) SeedMetadata(key string, md map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = copyMap(md)
}

func (m *MemoryClient) wait(ctx context.Context) error {
	m.mu.Lock()
	d := m.latency
	m.mu.Unlock()
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MemoryClient) Ping(ctx context.Context) error {
	return m.wait(ctx)
}

func (m *MemoryClient) List(ctx context.Context) ([]*models.Distribution, error) {
	if err := m.wait(ctx); err != nil {
		return nil, faults.Remote("list distributions", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Distribution, len(m.distributions))
	for i, d := range m.distributions {
		out[i] = d.Clone()
	}
	return out, nil
}

func (m *MemoryClient) Create(ctx context.Context, originBucket string, aliases []string, enabled bool) (*models.Distribution, error) {
	op := "create distribution for " + originBucket
	if err := m.wait(ctx); err != nil {
		return nil, faults.Remote(op, err)
	}
	if strings.TrimSpace(originBucket) == "" {
		return nil, faults.New(faults.ValidationError, op, fmt.Errorf("origin bucket is required"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "E" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:13])
	d := &models.Distribution{
		ID:           id,
		OriginBucket: originBucket,
		DomainName:   strings.ToLower(id) + ".cdn.example.net",
		Enabled:      enabled,
		Deployed:     true,
		Aliases:      nonNil(append([]string(nil), aliases...)),
		Status:       statusDeployed,
		LastModified: time.Now().UTC(),
	}
	m.distributions = append(m.distributions, d)
	return d.Clone(), nil
}

func (m *MemoryClient) Update(ctx context.Context, id string, aliases []string, enabled bool) (*models.Distribution, error) {
	op := "update distribution " + id
	if err := m.wait(ctx); err != nil {
		return nil, faults.Remote(op, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.find(id)
	if d == nil {
		return nil, faults.New(faults.NotFoundError, op, fmt.Errorf("no distribution with id %s", id))
	}
	d.Aliases = nonNil(append([]string(nil), aliases...))
	d.Enabled = enabled
	d.LastModified = time.Now().UTC()
	return d.Clone(), nil
}

func (m *MemoryClient) Delete(ctx context.Context, id string) error {
	op := "delete distribution " + id
	if err := m.wait(ctx); err != nil {
		return faults.Remote(op, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.distributions {
		if d.ID != id {
			continue
		}
		if !d.Deletable() {
			return faults.New(faults.PreconditionError, op, fmt.Errorf("distribution must be deployed and disabled"))
		}
		m.distributions = append(m.distributions[:i], m.distributions[i+1:]...)
		return nil
	}
	return nil // already gone
}

func (m *MemoryClient) GetMetadata(ctx context.Context, key string) (map[string]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, faults.Remote("read metadata of "+key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.metadata[key]
	if !ok {
		return nil, faults.New(faults.NotFoundError, "read metadata of "+key, fmt.Errorf("no object %s", key))
	}
	return copyMap(md), nil
}

func (m *MemoryClient) SetMetadata(ctx context.Context, key string, upserts map[string]string, removals []string) error {
	if err := m.wait(ctx); err != nil {
		return faults.Remote("write metadata of "+key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.metadata[key]
	if !ok {
		return faults.New(faults.NotFoundError, "write metadata of "+key, fmt.Errorf("no object %s", key))
	}
	for k, v := range upserts {
		md[k] = v
	}
	for _, k := range removals {
		delete(md, k)
	}
	return nil
}

func (m *MemoryClient) find(id string) *models.Distribution {
	for _, d := range m.distributions {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
