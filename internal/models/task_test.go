package models

import (
	"sync"
	"testing"
	"time"
)

func TestTaskStore_CreateGet(t *testing.T) {
	store := NewTaskStore(0)
	task := store.Create("Listing distributions", "refresh", 3)
	if task.ID == "" {
		t.Fatal("Create did not assign an ID")
	}
	if task.Status != TaskRunning {
		t.Errorf("Status = %q, want %q", task.Status, TaskRunning)
	}
	if got := store.Get(task.ID); got != task {
		t.Errorf("Get(%s) = %v, want created task", task.ID, got)
	}
	if store.Get("missing") != nil {
		t.Error("Get(missing) should return nil")
	}
}

func TestTask_Finish(t *testing.T) {
	store := NewTaskStore(0)

	ok := store.Create("a", "refresh", 0)
	ok.Complete()
	if s := ok.Snapshot(); s.Status != TaskCompleted || s.FinishedAt == nil {
		t.Errorf("Complete() = %+v", s)
	}

	bad := store.Create("b", "delete", 0)
	bad.Fail("HTTP 409", []string{"still enabled"})
	s := bad.Snapshot()
	if s.Status != TaskFailed || s.Error != "HTTP 409" || len(s.Causes) != 1 {
		t.Errorf("Fail() = %+v", s)
	}
	if bad.Running() {
		t.Error("failed task should not be running")
	}

	old := store.Create("c", "refresh", 1)
	old.Supersede("")
	if old.Snapshot().Status != TaskSuperseded {
		t.Errorf("Supersede() status = %q", old.Snapshot().Status)
	}
}

func TestTaskStore_ListMostRecentFirst(t *testing.T) {
	store := NewTaskStore(0)
	first := store.Create("first", "refresh", 0)
	time.Sleep(time.Millisecond)
	second := store.Create("second", "refresh", 0)

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d tasks, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want [second first]", list[0].Title, list[1].Title)
	}
}

func TestTaskStore_EvictsOldestFinished(t *testing.T) {
	store := NewTaskStore(2)
	a := store.Create("a", "refresh", 0)
	a.Complete()
	time.Sleep(time.Millisecond)
	b := store.Create("b", "refresh", 0)
	time.Sleep(time.Millisecond)
	c := store.Create("c", "refresh", 0)

	if store.Get(a.ID) != nil {
		t.Error("oldest finished task should be evicted")
	}
	if store.Get(b.ID) == nil || store.Get(c.ID) == nil {
		t.Error("running tasks must be kept")
	}
}

func TestTaskStore_Concurrent(t *testing.T) {
	store := NewTaskStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := store.Create("concurrent", "refresh", 0)
			task.Complete()
			store.List()
		}()
	}
	wg.Wait()
	if n := len(store.List()); n != 50 {
		t.Fatalf("expected 50 tasks, got %d", n)
	}
}

func TestTask_SnapshotIsDetached(t *testing.T) {
	store := NewTaskStore(0)
	task := store.Create("Listing distributions", "refresh", 1)

	var info TaskInfo = task.Snapshot()
	info.Status = TaskFailed
	info.Title = "changed"

	if got := task.Snapshot(); got.Status != TaskRunning || got.Title != "Listing distributions" {
		t.Errorf("Snapshot() shares state with the task: %+v", got)
	}
	task.Fail("boom", []string{"cause"})
	if info.Error != "" || info.Causes != nil {
		t.Errorf("earlier snapshot changed after Fail: %+v", info)
	}
	if list := store.List(); len(list) != 1 || list[0].Status != TaskFailed {
		t.Errorf("List() = %+v, want one failed task", list)
	}
}
