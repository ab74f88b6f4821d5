// Package controller wires user actions on the distribution dialog to
// background tasks and applies their results to the local list.
//
// Every exported method must be called on the UI loop the controller was
// created with; the controller holds no locks.
package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/logging"
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/platform"
	"github.com/rflorenc/distribution-workbench/internal/reconcile"
	"github.com/rflorenc/distribution-workbench/internal/tasks"
	"github.com/rflorenc/distribution-workbench/internal/uiloop"
	"github.com/rflorenc/distribution-workbench/internal/view"
)

const (
	kindRefresh = "refresh"
	kindCreate  = "create"
	kindUpdate  = "update"
	kindDelete  = "delete"
)

// Options configures a Controller.
type Options struct {
	Placeholder      bool
	SupersedeRefresh bool
	Workers          int
	TaskHistory      int
	Metrics          *tasks.Metrics
}

// Controller is the dialog controller for the distribution list.
type Controller struct {
	client    platform.RemoteClient
	coord     *tasks.Coordinator
	notifier  Notifier
	supersede bool

	cache    *models.ListCache
	selected *int
	open     []models.TaskInfo
	pending  []tasks.ErrorReport
	editor   *AttributeEditor
}

// New creates a controller whose tasks run against client and report back
// on loop. ctx bounds the lifetime of background workers.
func New(ctx context.Context, loop *uiloop.Loop, client platform.RemoteClient, notifier Notifier, opts Options) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	c := &Controller{
		client:    client,
		notifier:  notifier,
		supersede: opts.SupersedeRefresh,
		cache:     models.NewListCache(opts.Placeholder),
	}
	c.coord = tasks.NewCoordinator(ctx, loop, c, c, tasks.Options{
		Workers: opts.Workers,
		Tasks:   models.NewTaskStore(opts.TaskHistory),
		Metrics: opts.Metrics,
	})
	c.editor = newAttributeEditor(c)
	return c
}

// Tasks returns the store of recent tasks. It is safe to use from any goroutine.
func (c *Controller) Tasks() *models.TaskStore {
	return c.coord.Tasks()
}

// Wait blocks until every started task, including ones started by completion
// callbacks, has been applied on the loop.
// It must not be called on the loop.
func (c *Controller) Wait() {
	c.coord.Wait()
}

// Cache returns the list cache.
func (c *Controller) Cache() *models.ListCache {
	return c.cache
}

// Editor returns the attribute editor.
func (c *Controller) Editor() *AttributeEditor {
	return c.editor
}

// Open implements tasks.Progress.
func (c *Controller) Open(task models.TaskInfo) {
	c.open = append(c.open, task)
	c.notifier.Publish(Event{Type: EventProgressOpen, Task: &task})
	c.publishView()
}

// Close implements tasks.Progress.
func (c *Controller) Close(task models.TaskInfo) {
	for i, t := range c.open {
		if t.ID == task.ID {
			c.open = append(c.open[:i], c.open[i+1:]...)
			break
		}
	}
	c.notifier.Publish(Event{Type: EventProgressClose, Task: &task})
	c.publishView()
}

// Report implements tasks.ErrorReporter. Reports queue up; the oldest one is
// shown until dismissed and blocks further actions.
func (c *Controller) Report(report tasks.ErrorReport) {
	c.pending = append(c.pending, report)
	c.notifier.Publish(Event{Type: EventError, Report: &report})
	c.publishView()
}

// PendingError returns the report currently shown, if any.
func (c *Controller) PendingError() *tasks.ErrorReport {
	if len(c.pending) == 0 {
		return nil
	}
	r := c.pending[0]
	return &r
}

// DismissError closes the report currently shown. It reports false when no
// report was pending.
func (c *Controller) DismissError() bool {
	if len(c.pending) == 0 {
		return false
	}
	c.pending = c.pending[1:]
	c.publishView()
	return true
}

// Selected returns the selected row, or nil.
func (c *Controller) Selected() *int {
	if c.selected == nil {
		return nil
	}
	i := *c.selected
	return &i
}

// OnSelectionChanged records the selected row and returns the action state it
// implies. A nil row clears the selection.
func (c *Controller) OnSelectionChanged(row *int) models.ActionState {
	if row == nil || *row < 0 || *row >= c.cache.Rows() {
		c.selected = nil
	} else {
		i := *row
		c.selected = &i
	}
	c.publishView()
	return models.StateFor(c.cache, c.selected)
}

// ActionState returns the action state of the current selection.
func (c *Controller) ActionState() models.ActionState {
	return models.StateFor(c.cache, c.selected)
}

// OnRefreshRequested fetches the distribution list and replaces the cache.
func (c *Controller) OnRefreshRequested() error {
	if err := c.guard(); err != nil {
		return err
	}
	c.refresh("")
	return nil
}

// refresh lists distributions; when selectID is set and present in the new
// list, it becomes the selection.
func (c *Controller) refresh(selectID string) {
	opts := []tasks.RunOption{tasks.WithKind(kindRefresh)}
	if c.supersede {
		opts = append(opts, tasks.WithSupersede(kindRefresh))
	}
	tasks.Run(c.coord, "Listing distributions", c.client.List, func(list []*models.Distribution) {
		c.cache.ReplaceAll(list)
		c.selected = reconcile.Selection(c.selected, c.cache.Len())
		if selectID != "" {
			if i := c.cache.IndexOfID(selectID); i >= 0 {
				c.selected = &i
			}
		}
		logging.Debug("Controller", "list replaced with %d distributions", c.cache.Len())
		c.publishView()
	}, opts...)
}

// OnCreateRequested creates a distribution for originBucket, then refreshes
// the list and selects the new entry.
func (c *Controller) OnCreateRequested(originBucket string, aliases []string, enabled bool) error {
	if err := c.guard(); err != nil {
		return err
	}
	origin := strings.TrimSpace(originBucket)
	if origin == "" {
		return c.reject("Creating distribution", faults.New(faults.ValidationError, "origin bucket is required", nil))
	}
	aliases = NormalizeAliases(aliases)
	title := fmt.Sprintf("Creating distribution for %s", origin)
	tasks.Run(c.coord, title, func(ctx context.Context) (*models.Distribution, error) {
		return c.client.Create(ctx, origin, aliases, enabled)
	}, func(d *models.Distribution) {
		logging.Info("Controller", "created distribution %s for %s", d.ID, origin)
		c.refresh(d.ID)
	}, tasks.WithKind(kindCreate))
	return nil
}

// OnUpdateRequested replaces the aliases and enabled flag of a deployed
// distribution, then refreshes the list.
func (c *Controller) OnUpdateRequested(id string, aliases []string, enabled bool) error {
	if err := c.guard(); err != nil {
		return err
	}
	title := "Updating distribution " + id
	entry := c.cache.Lookup(c.cache.IndexOfID(id))
	if entry == nil {
		return c.reject(title, faults.New(faults.NotFoundError, "distribution "+id+" is not in the list", nil))
	}
	if !entry.Deployed {
		return c.reject(title, faults.Precondition("distribution "+id+" is still deploying"))
	}
	aliases = NormalizeAliases(aliases)
	tasks.Run(c.coord, title, func(ctx context.Context) (*models.Distribution, error) {
		return c.client.Update(ctx, id, aliases, enabled)
	}, func(d *models.Distribution) {
		logging.Info("Controller", "updated distribution %s", d.ID)
		c.refresh(d.ID)
	}, tasks.WithKind(kindUpdate))
	return nil
}

// OnDeleteRequested deletes a deployed, disabled distribution, then refreshes
// the list. The guard is checked here as well as in the view: a delete that
// slips past a stale view is reported without calling the service.
func (c *Controller) OnDeleteRequested(id string) error {
	if err := c.guard(); err != nil {
		return err
	}
	title := "Deleting distribution " + id
	entry := c.cache.Lookup(c.cache.IndexOfID(id))
	if entry == nil {
		return c.reject(title, faults.New(faults.NotFoundError, "distribution "+id+" is not in the list", nil))
	}
	if !entry.Deletable() {
		return c.reject(title, faults.Precondition("distribution "+id+" must be deployed and disabled before it can be deleted"))
	}
	tasks.Run(c.coord, title, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.client.Delete(ctx, id)
	}, func(struct{}) {
		logging.Info("Controller", "deleted distribution %s", id)
		c.refresh("")
	}, tasks.WithKind(kindDelete))
	return nil
}

// Snapshot renders the current state.
func (c *Controller) Snapshot() view.Table {
	return view.Render(view.Input{
		Cache:    c.cache,
		Selected: c.selected,
		Progress: append([]models.TaskInfo(nil), c.open...),
		Error:    c.PendingError(),
		Editor:   c.editor.view(),
	})
}

// guard refuses new actions while an error report is waiting to be dismissed.
func (c *Controller) guard() error {
	if r := c.PendingError(); r != nil {
		return faults.Precondition("dismiss the pending error first: " + r.Message)
	}
	return nil
}

// reject reports an action refused before any remote call and returns err.
func (c *Controller) reject(title string, err error) error {
	logging.Warn("Controller", "%s refused: %v", title, err)
	c.Report(tasks.NewErrorReport("", title, err))
	return err
}

func (c *Controller) publishView() {
	v := c.Snapshot()
	c.notifier.Publish(Event{Type: EventView, View: &v})
}

// NormalizeAliases trims aliases, drops blanks and repeats, and keeps order.
func NormalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	seen := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
