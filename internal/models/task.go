package models

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TaskRunning    = "running"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
	TaskSuperseded = "superseded"
)

// TaskInfo is a point-in-time copy of a Task, free to pass by value.
type TaskInfo struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Kind       string     `json:"kind"`
	Generation uint64     `json:"generation,omitempty"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Causes     []string   `json:"causes,omitempty"`
}

// Task records one background operation (refresh, create, update, delete,
// metadata fetch or apply). It is always handled by pointer; ID, Title,
// Kind, Generation and StartedAt never change after creation.
type Task struct {
	TaskInfo
	mu sync.Mutex
}

// Complete marks the task as completed.
func (t *Task) Complete() {
	t.finish(TaskCompleted, "", nil)
}

// Fail marks the task as failed with an error message and its causes.
func (t *Task) Fail(err string, causes []string) {
	t.finish(TaskFailed, err, causes)
}

// Supersede marks the task as finished but overtaken by a newer run.
func (t *Task) Supersede(err string) {
	t.finish(TaskSuperseded, err, nil)
}

func (t *Task) finish(status, err string, causes []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = status
	t.Error = err
	t.Causes = causes
	now := time.Now()
	t.FinishedAt = &now
}

// Snapshot returns a copy safe to hand out while the task may still change.
func (t *Task) Snapshot() TaskInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskInfo{
		ID:         t.ID,
		Title:      t.Title,
		Kind:       t.Kind,
		Generation: t.Generation,
		Status:     t.Status,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Error:      t.Error,
		Causes:     append([]string(nil), t.Causes...),
	}
}

// Running reports whether the task has not finished yet.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Status == TaskRunning
}

// TaskStore is an in-memory thread-safe store for recent tasks. Once it holds
// more than its limit, the oldest finished tasks are evicted.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	limit int
}

// NewTaskStore creates an empty task store keeping at most limit tasks.
// A limit of zero or less keeps everything.
func NewTaskStore(limit int) *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task), limit: limit}
}

// Create adds a new running task, assigning it a UUID.
func (s *TaskStore) Create(title, kind string, generation uint64) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Task{TaskInfo: TaskInfo{
		ID:         uuid.New().String(),
		Title:      title,
		Kind:       kind,
		Generation: generation,
		Status:     TaskRunning,
		StartedAt:  time.Now(),
	}}
	s.tasks[t.ID] = t
	s.evictLocked()
	return t
}

// Get returns a task by ID, or nil if not found.
func (s *TaskStore) Get(id string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[id]
}

// List returns snapshots of all tasks, most recent first.
func (s *TaskStore) List() []TaskInfo {
	s.mu.RLock()
	result := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, t.Snapshot())
	}
	s.mu.RUnlock()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result
}

func (s *TaskStore) evictLocked() {
	if s.limit <= 0 || len(s.tasks) <= s.limit {
		return
	}
	finished := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Running() {
			finished = append(finished, t)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].StartedAt.Before(finished[j].StartedAt)
	})
	for _, t := range finished {
		if len(s.tasks) <= s.limit {
			return
		}
		delete(s.tasks, t.ID)
	}
}
