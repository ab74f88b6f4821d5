// Package view turns controller state into what the frontend draws. It holds
// no state and makes no decisions beyond presentation.
package view

import (
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/reconcile"
	"github.com/rflorenc/distribution-workbench/internal/tasks"
)

// PlaceholderLabel is shown in the placeholder row.
const PlaceholderLabel = "(new distribution)"

// Row is one rendered table row.
type Row struct {
	Index        int      `json:"index"`
	ID           string   `json:"id,omitempty"`
	OriginBucket string   `json:"origin_bucket"`
	DomainName   string   `json:"domain_name,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
	Enabled      bool     `json:"enabled"`
	Deployed     bool     `json:"deployed"`
	Status       string   `json:"status,omitempty"`
	Placeholder  bool     `json:"placeholder,omitempty"`
	Selected     bool     `json:"selected,omitempty"`
}

// Action is a button's label and whether it can be pressed.
type Action struct {
	Label   string `json:"label,omitempty"`
	Enabled bool   `json:"enabled"`
}

type Actions struct {
	Primary Action `json:"primary"`
	Delete  Action `json:"delete"`
	Refresh Action `json:"refresh"`
}

// Progress is one open progress indicator.
type Progress struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
}

// Editor is the attribute editor panel.
type Editor struct {
	Key     string          `json:"key"`
	Loading bool            `json:"loading"`
	Rows    []reconcile.Row `json:"rows"`
}

// Table is everything the frontend needs to draw the dialog.
type Table struct {
	Rows      []Row                `json:"rows"`
	Selected  *int                 `json:"selected"`
	Selection models.SelectionKind `json:"selection"`
	Actions   Actions              `json:"actions"`
	Progress  []Progress           `json:"progress"`
	Error     *tasks.ErrorReport   `json:"error,omitempty"`
	Editor    *Editor              `json:"editor,omitempty"`
}

// Input is the controller state to render.
type Input struct {
	Cache    *models.ListCache
	Selected *int
	Progress []models.TaskInfo
	Error    *tasks.ErrorReport
	Editor   *Editor
}

// Render builds the table for in.
func Render(in Input) Table {
	rows := make([]Row, 0, in.Cache.Rows())
	for i, e := range in.Cache.Entries() {
		rows = append(rows, Row{
			Index:        i,
			ID:           e.ID,
			OriginBucket: e.OriginBucket,
			DomainName:   e.DomainName,
			Aliases:      e.Aliases,
			Enabled:      e.Enabled,
			Deployed:     e.Deployed,
			Status:       e.Status,
			Selected:     isSelected(in.Selected, i),
		})
	}
	if in.Cache.HasPlaceholder() {
		i := in.Cache.Len()
		rows = append(rows, Row{
			Index:        i,
			OriginBucket: PlaceholderLabel,
			Placeholder:  true,
			Selected:     isSelected(in.Selected, i),
		})
	}

	state := models.StateFor(in.Cache, in.Selected)
	blocked := in.Error != nil
	actions := Actions{
		Primary: Action{Label: state.PrimaryLabel, Enabled: state.PrimaryEnabled && !blocked},
		Delete:  Action{Label: "delete", Enabled: state.DeleteEnabled && !blocked},
		Refresh: Action{Label: "refresh", Enabled: !blocked},
	}

	progress := make([]Progress, 0, len(in.Progress))
	for _, t := range in.Progress {
		progress = append(progress, Progress{TaskID: t.ID, Title: t.Title})
	}

	return Table{
		Rows:      rows,
		Selected:  in.Selected,
		Selection: state.Kind,
		Actions:   actions,
		Progress:  progress,
		Error:     in.Error,
		Editor:    in.Editor,
	}
}

func isSelected(selected *int, i int) bool {
	return selected != nil && *selected == i
}
