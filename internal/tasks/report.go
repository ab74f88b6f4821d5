package tasks

import (
	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/models"
)

// Progress receives the lifecycle of the indicator shown while a task runs.
// Both methods are called on the UI loop, Close exactly once per Open.
type Progress interface {
	Open(task models.TaskInfo)
	Close(task models.TaskInfo)
}

// ErrorReporter surfaces a failed task to the user. Report is called on the
// UI loop, once per failed task.
type ErrorReporter interface {
	Report(report ErrorReport)
}

// ErrorReport is the content of the modal error dialog.
type ErrorReport struct {
	TaskID   string          `json:"task_id,omitempty"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Category faults.Category `json:"category"`
	Causes   []string        `json:"causes,omitempty"`
}

// NewErrorReport builds the report for err raised while running title.
func NewErrorReport(taskID, title string, err error) ErrorReport {
	return ErrorReport{
		TaskID:   taskID,
		Title:    title,
		Message:  err.Error(),
		Category: faults.CategoryOf(err),
		Causes:   faults.CauseChain(err),
	}
}
