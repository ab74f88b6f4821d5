package controller

import (
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/tasks"
	"github.com/rflorenc/distribution-workbench/internal/view"
)

const (
	EventProgressOpen  = "progress.open"
	EventProgressClose = "progress.close"
	EventError         = "error"
	EventView          = "view"
)

// Event is pushed to the frontend whenever controller state changes.
type Event struct {
	Type   string             `json:"type"`
	Task   *models.TaskInfo   `json:"task,omitempty"`
	Report *tasks.ErrorReport `json:"report,omitempty"`
	View   *view.Table        `json:"view,omitempty"`
}

// Notifier receives controller events on the UI loop. Publish must not block.
type Notifier interface {
	Publish(Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}
