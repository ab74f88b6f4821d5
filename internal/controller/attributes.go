package controller

import (
	"context"
	"strings"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/logging"
	"github.com/rflorenc/distribution-workbench/internal/reconcile"
	"github.com/rflorenc/distribution-workbench/internal/tasks"
	"github.com/rflorenc/distribution-workbench/internal/view"
)

const (
	kindMetadataRead  = "metadata-read"
	kindMetadataWrite = "metadata-write"
)

// AttributeEditor edits the user metadata of one object at a time. The
// baseline is captured when editing begins and dropped when it ends, whether
// by commit or cancel.
type AttributeEditor struct {
	c        *Controller
	key      string
	loading  bool
	baseline map[string]string
}

func newAttributeEditor(c *Controller) *AttributeEditor {
	return &AttributeEditor{c: c}
}

// Active reports whether an editing session holds a baseline.
func (e *AttributeEditor) Active() bool {
	return e.baseline != nil
}

// Key returns the object being edited, or "".
func (e *AttributeEditor) Key() string {
	return e.key
}

// Baseline returns a copy of the captured baseline, or nil.
func (e *AttributeEditor) Baseline() map[string]string {
	if e.baseline == nil {
		return nil
	}
	return copyMap(e.baseline)
}

// Begin starts editing key: its metadata is fetched and, once it arrives,
// captured as the baseline. Beginning again discards any open session, and
// only the most recent fetch is kept.
func (e *AttributeEditor) Begin(key string) error {
	if err := e.c.guard(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return e.c.reject("Reading metadata", faults.New(faults.ValidationError, "object key is required", nil))
	}
	e.key = key
	e.baseline = nil
	e.loading = true
	tasks.Run(e.c.coord, "Reading metadata of "+key, func(ctx context.Context) (map[string]string, error) {
		return e.c.client.GetMetadata(ctx, key)
	}, func(md map[string]string) {
		if e.key != key || !e.loading {
			return
		}
		e.loading = false
		e.baseline = copyMap(md)
		logging.Debug("Editor", "editing %d attributes of %s", len(md), key)
		e.c.publishView()
	}, tasks.WithKind(kindMetadataRead), tasks.WithSupersede(kindMetadataRead), tasks.OnFailure(func(error) {
		if e.key == key && e.loading {
			e.end()
			e.c.publishView()
		}
	}))
	e.c.publishView()
	return nil
}

// Commit reconciles rows against the baseline, ends the session and applies
// the result to the object in the background.
func (e *AttributeEditor) Commit(rows []reconcile.Row) (reconcile.Result, error) {
	if err := e.c.guard(); err != nil {
		return reconcile.Result{}, err
	}
	if !e.Active() {
		return reconcile.Result{}, e.c.reject("Writing metadata", faults.Precondition("no attribute editing session is open"))
	}
	key := e.key
	result := reconcile.Attributes(e.baseline, rows)
	e.end()

	tasks.Run(e.c.coord, "Writing metadata of "+key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.c.client.SetMetadata(ctx, key, result.Upserts, result.Removals)
	}, func(struct{}) {
		logging.Info("Editor", "applied %d upserts and %d removals to %s", len(result.Upserts), len(result.Removals), key)
	}, tasks.WithKind(kindMetadataWrite))
	e.c.publishView()
	return result, nil
}

// Cancel ends the session without applying anything.
func (e *AttributeEditor) Cancel() {
	e.end()
	e.c.publishView()
}

func (e *AttributeEditor) end() {
	e.key = ""
	e.loading = false
	e.baseline = nil
}

func (e *AttributeEditor) view() *view.Editor {
	if e.key == "" {
		return nil
	}
	v := &view.Editor{Key: e.key, Loading: e.loading, Rows: []reconcile.Row{}}
	if e.baseline != nil {
		v.Rows = reconcile.RowsOf(e.baseline)
	}
	return v
}

// OnAttributesCommitted commits the open attribute editing session.
func (c *Controller) OnAttributesCommitted(rows []reconcile.Row) (reconcile.Result, error) {
	return c.editor.Commit(rows)
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
