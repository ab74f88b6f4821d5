package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/models"
)

var _ RemoteClient = (*MemoryClient)(nil)
var _ RemoteClient = (*HTTPClient)(nil)

func TestMemoryClient_CreateUpdateList(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()

	created, err := m.Create(ctx, "assets", []string{"static.example.com"}, true)
	require.NoError(t, err)
	assert.True(t, created.Deployed)
	assert.NotEmpty(t, created.ID)

	updated, err := m.Update(ctx, created.ID, nil, false)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, []string{}, updated.Aliases)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	list[0].OriginBucket = "mutated"
	again, _ := m.List(ctx)
	assert.Equal(t, "assets", again[0].OriginBucket, "List must return copies")
}

func TestMemoryClient_CreateRequiresOrigin(t *testing.T) {
	_, err := NewMemoryClient().Create(context.Background(), "  ", nil, true)
	assert.True(t, faults.IsCategory(err, faults.ValidationError))
}

func TestMemoryClient_UpdateMissing(t *testing.T) {
	_, err := NewMemoryClient().Update(context.Background(), "nope", nil, true)
	assert.True(t, faults.IsCategory(err, faults.NotFoundError))
}

func TestMemoryClient_DeletePrecondition(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		deployed bool
		enabled  bool
		wantErr  bool
	}{
		{"deployed disabled", true, false, false},
		{"deployed enabled", true, true, true},
		{"deploying disabled", false, false, true},
		{"deploying enabled", false, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMemoryClient()
			m.Seed(&models.Distribution{ID: "E1", Deployed: tc.deployed, Enabled: tc.enabled})
			err := m.Delete(ctx, "E1")
			if tc.wantErr {
				assert.True(t, faults.IsCategory(err, faults.PreconditionError))
				list, _ := m.List(ctx)
				assert.Len(t, list, 1)
			} else {
				assert.NoError(t, err)
				list, _ := m.List(ctx)
				assert.Empty(t, list)
			}
		})
	}
	assert.NoError(t, NewMemoryClient().Delete(ctx, "gone"))
}

func TestMemoryClient_Metadata(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryClient()
	m.SeedMetadata("index.html", map[string]string{"a": "1", "b": "2"})

	require.NoError(t, m.SetMetadata(ctx, "index.html", map[string]string{"a": "9", "c": "3"}, []string{"b"}))
	md, err := m.GetMetadata(ctx, "index.html")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "9", "c": "3"}, md)

	_, err = m.GetMetadata(ctx, "missing")
	assert.True(t, faults.IsCategory(err, faults.NotFoundError))
}

func TestMemoryClient_LatencyHonoursContext(t *testing.T) {
	m := NewMemoryClient()
	m.SetLatency(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.List(ctx)
	assert.True(t, faults.IsCategory(err, faults.RemoteOperationError))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
