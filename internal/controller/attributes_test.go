package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/reconcile"
)

func TestAttributeEditor_BeginCapturesBaseline(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("reports/q3.csv", map[string]string{"owner": "ops", "tier": "gold"})

	f.on(func(c *Controller) {
		require.NoError(t, c.Editor().Begin(" reports/q3.csv "))
		snap := c.Snapshot()
		require.NotNil(t, snap.Editor)
		assert.True(t, snap.Editor.Loading)
		assert.False(t, c.Editor().Active())
	})
	f.settle()

	f.on(func(c *Controller) {
		e := c.Editor()
		assert.True(t, e.Active())
		assert.Equal(t, "reports/q3.csv", e.Key())
		assert.Equal(t, map[string]string{"owner": "ops", "tier": "gold"}, e.Baseline())
		snap := c.Snapshot()
		require.NotNil(t, snap.Editor)
		assert.False(t, snap.Editor.Loading)
		assert.Equal(t, []reconcile.Row{{Name: "owner", Value: "ops"}, {Name: "tier", Value: "gold"}}, snap.Editor.Rows)
	})
}

func TestAttributeEditor_CommitAppliesDifference(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("obj", map[string]string{"a": "1", "b": "2"})

	f.on(func(c *Controller) { require.NoError(t, c.Editor().Begin("obj")) })
	f.settle()

	var result reconcile.Result
	f.on(func(c *Controller) {
		var err error
		result, err = c.OnAttributesCommitted([]reconcile.Row{
			{Name: "a", Value: "1"},
			{Name: "c", Value: "3"},
		})
		require.NoError(t, err)
		assert.False(t, c.Editor().Active(), "commit ends the session")
		assert.Nil(t, c.Editor().Baseline())
		assert.Nil(t, c.Snapshot().Editor)
	})
	f.settle()

	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, result.Upserts)
	assert.Equal(t, []string{"b"}, result.Removals)

	md, err := f.remote.GetMetadata(context.Background(), "obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, md)
	f.on(func(c *Controller) { assert.Nil(t, c.PendingError()) })
}

func TestAttributeEditor_CommitWithoutSession(t *testing.T) {
	f := newFixture(t, defaultOptions())

	var err error
	f.on(func(c *Controller) {
		_, err = c.OnAttributesCommitted([]reconcile.Row{{Name: "a", Value: "1"}})
	})
	assert.True(t, faults.IsCategory(err, faults.PreconditionError))
	f.on(func(c *Controller) {
		require.NotNil(t, c.PendingError())
		assert.Empty(t, c.Tasks().List())
	})
}

func TestAttributeEditor_CommitWhileLoading(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("obj", map[string]string{"a": "1"})

	var err error
	f.on(func(c *Controller) {
		require.NoError(t, c.Editor().Begin("obj"))
		_, err = c.Editor().Commit(nil)
	})
	assert.True(t, faults.IsCategory(err, faults.PreconditionError))
	f.settle()
}

func TestAttributeEditor_Cancel(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("obj", map[string]string{"a": "1"})

	f.on(func(c *Controller) { require.NoError(t, c.Editor().Begin("obj")) })
	f.settle()
	f.on(func(c *Controller) {
		c.Editor().Cancel()
		assert.False(t, c.Editor().Active())
		assert.Equal(t, "", c.Editor().Key())
	})

	md, err := f.remote.GetMetadata(context.Background(), "obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, md)
}

func TestAttributeEditor_CancelWhileLoadingIgnoresLateResult(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("obj", map[string]string{"a": "1"})

	f.on(func(c *Controller) {
		require.NoError(t, c.Editor().Begin("obj"))
		c.Editor().Cancel()
	})
	f.settle()

	f.on(func(c *Controller) {
		assert.False(t, c.Editor().Active())
		assert.Nil(t, c.Snapshot().Editor)
	})
}

func TestAttributeEditor_FetchFailureEndsSession(t *testing.T) {
	f := newFixture(t, defaultOptions())

	f.on(func(c *Controller) { require.NoError(t, c.Editor().Begin("missing")) })
	f.settle()

	f.on(func(c *Controller) {
		assert.False(t, c.Editor().Active())
		assert.Nil(t, c.Snapshot().Editor)
		report := c.PendingError()
		require.NotNil(t, report)
		assert.Equal(t, faults.NotFoundError, report.Category)
		assert.Equal(t, "Reading metadata of missing", report.Title)
	})
}

func TestAttributeEditor_BlankKey(t *testing.T) {
	f := newFixture(t, defaultOptions())
	var err error
	f.on(func(c *Controller) { err = c.Editor().Begin("   ") })
	assert.True(t, faults.IsCategory(err, faults.ValidationError))
}

func TestAttributeEditor_BeginAgainKeepsLatest(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.remote.SeedMetadata("first", map[string]string{"x": "1"})
	f.remote.SeedMetadata("second", map[string]string{"y": "2"})

	f.on(func(c *Controller) {
		require.NoError(t, c.Editor().Begin("first"))
		require.NoError(t, c.Editor().Begin("second"))
	})
	f.settle()

	f.on(func(c *Controller) {
		assert.Equal(t, "second", c.Editor().Key())
		assert.Equal(t, map[string]string{"y": "2"}, c.Editor().Baseline())
	})
}
