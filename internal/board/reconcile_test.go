package board

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
)

func fixture() State {
	return NewState(domain.DefaultColumns(), []domain.Task{
		{ID: "a", Title: "A", Status: domain.StatusTodo, Position: 0},
		{ID: "b", Title: "B", Status: domain.StatusTodo, Position: 1},
		{ID: "c", Title: "C", Status: domain.StatusInProgress, Position: 2},
		{ID: "d", Title: "D", Status: domain.StatusDone, Position: 3},
	})
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func statuses(columns []domain.Column) []domain.Status {
	out := make([]domain.Status, len(columns))
	for i, col := range columns {
		out[i] = col.Status
	}
	return out
}

func taskItem(id string) *Item   { return &Item{Kind: KindTask, ID: id} }
func columnItem(id string) *Item { return &Item{Kind: KindColumn, ID: id} }

func TestDragStartLockedColumnSetsNothing(t *testing.T) {
	s, calls := Reconcile(fixture(), DragStart{Active: *columnItem("todo")})
	if s.ActiveColumn != nil || s.ActiveTask != nil {
		t.Fatalf("expected no active item for locked column, got %+v / %+v", s.ActiveColumn, s.ActiveTask)
	}
	if len(calls) != 0 {
		t.Fatalf("drag start must not write, got %v", calls)
	}
}

func TestDragStartSetsActiveItem(t *testing.T) {
	s, _ := Reconcile(fixture(), DragStart{Active: *columnItem("done")})
	if s.ActiveColumn == nil || s.ActiveColumn.Status != domain.StatusDone {
		t.Fatalf("expected done column active, got %+v", s.ActiveColumn)
	}

	s, _ = Reconcile(s, DragStart{Active: *taskItem("c")})
	if s.ActiveColumn != nil {
		t.Fatal("starting a task drag should replace the active column")
	}
	if s.ActiveTask == nil || s.ActiveTask.ID != "c" {
		t.Fatalf("expected task c active, got %+v", s.ActiveTask)
	}
}

func TestDragOverTaskOntoColumnChangesStatusOnly(t *testing.T) {
	start := fixture()
	s, calls := Reconcile(start, DragOver{Active: *taskItem("a"), Over: columnItem("done")})

	if len(calls) != 0 {
		t.Fatalf("drag over must not write, got %v", calls)
	}
	if len(s.Tasks) != len(start.Tasks) {
		t.Fatalf("task count changed: %d -> %d", len(start.Tasks), len(s.Tasks))
	}
	if got := s.Tasks[s.TaskIndex("a")].Status; got != domain.StatusDone {
		t.Fatalf("expected status done, got %s", got)
	}
	if !reflect.DeepEqual(ids(s.Tasks), ids(start.Tasks)) {
		t.Fatalf("order changed: %v", ids(s.Tasks))
	}
	if start.Tasks[0].Status != domain.StatusTodo {
		t.Fatal("input state was mutated")
	}
}

func TestDragOverEveryTaskOntoEveryColumn(t *testing.T) {
	start := fixture()
	for _, task := range start.Tasks {
		for _, col := range start.Columns {
			s, _ := Reconcile(start, DragOver{Active: *taskItem(task.ID), Over: columnItem(string(col.Status))})
			if got := s.Tasks[s.TaskIndex(task.ID)].Status; got != col.Status {
				t.Fatalf("task %s over %s: status %s", task.ID, col.Status, got)
			}
			if len(s.Tasks) != len(start.Tasks) {
				t.Fatalf("task %s over %s: count %d", task.ID, col.Status, len(s.Tasks))
			}
		}
	}
}

func TestDragOverTaskOntoTaskMovesAndCopiesStatus(t *testing.T) {
	s, _ := Reconcile(fixture(), DragOver{Active: *taskItem("a"), Over: taskItem("c")})

	if want := []string{"b", "c", "a", "d"}; !reflect.DeepEqual(ids(s.Tasks), want) {
		t.Fatalf("order = %v, want %v", ids(s.Tasks), want)
	}
	moved := s.Tasks[2]
	if moved.Status != domain.StatusInProgress {
		t.Fatalf("expected copied status inProgress, got %s", moved.Status)
	}
	if moved.Position != 2 {
		t.Fatalf("expected position 2, got %d", moved.Position)
	}
}

func TestDragOverWithoutTargetIsNoop(t *testing.T) {
	start := fixture()
	s, _ := Reconcile(start, DragOver{Active: *taskItem("a")})
	if !reflect.DeepEqual(s, start) {
		t.Fatalf("state changed without a target: %+v", s)
	}

	s, _ = Reconcile(start, DragOver{Active: *taskItem("a"), Over: taskItem("ghost")})
	if !reflect.DeepEqual(s, start) {
		t.Fatalf("state changed for unknown target: %+v", s)
	}
}

func TestDragEndClearsActiveEvenWithoutDrop(t *testing.T) {
	s, _ := Reconcile(fixture(), DragStart{Active: *taskItem("a")})
	s, calls := Reconcile(s, DragEnd{Active: *taskItem("a")})
	if s.ActiveTask != nil || s.ActiveColumn != nil {
		t.Fatal("expected active items cleared")
	}
	if len(calls) != 0 {
		t.Fatalf("expected no writes, got %v", calls)
	}
}

func TestDragEndStaleIDsAbortSilently(t *testing.T) {
	start := fixture()
	cases := []DragEnd{
		{Active: *taskItem("a"), Over: taskItem("deleted")},
		{Active: *taskItem("deleted"), Over: taskItem("a")},
		{Active: *taskItem("a"), Over: columnItem("archive")},
		{Active: *columnItem("done"), Over: columnItem("archive")},
	}
	for _, ev := range cases {
		s, calls := Reconcile(start, ev)
		if len(calls) != 0 {
			t.Fatalf("%+v: expected no writes, got %v", ev, calls)
		}
		if !reflect.DeepEqual(ids(s.Tasks), ids(start.Tasks)) || !reflect.DeepEqual(statuses(s.Columns), statuses(start.Columns)) {
			t.Fatalf("%+v: lists changed", ev)
		}
	}
}

func TestCompletedTaskDragEmitsSingleStatusWrite(t *testing.T) {
	s, _ := Reconcile(fixture(), DragStart{Active: *taskItem("a")})
	s, _ = Reconcile(s, DragOver{Active: *taskItem("a"), Over: columnItem("inProgress")})
	s, _ = Reconcile(s, DragOver{Active: *taskItem("a"), Over: taskItem("d")})
	s, _ = Reconcile(s, DragOver{Active: *taskItem("a"), Over: taskItem("c")})
	s, calls := Reconcile(s, DragEnd{Active: *taskItem("a"), Over: taskItem("c")})

	if len(calls) != 1 {
		t.Fatalf("expected exactly one write, got %d: %v", len(calls), calls)
	}
	call, ok := calls[0].(SetTaskStatus)
	if !ok {
		t.Fatalf("expected SetTaskStatus, got %T", calls[0])
	}
	final := s.Tasks[s.TaskIndex("a")]
	if call.ID != "a" || call.Status != final.Status || call.Index != s.TaskIndex("a") {
		t.Fatalf("call %+v does not match final task %+v at %d", call, final, s.TaskIndex("a"))
	}
	if final.Status != domain.StatusInProgress {
		t.Fatalf("expected inProgress, got %s", final.Status)
	}
}

func TestTaskDropOnColumnPersistsStatus(t *testing.T) {
	s, calls := Reconcile(fixture(), DragEnd{Active: *taskItem("b"), Over: columnItem("done")})
	want := []Call{SetTaskStatus{ID: "b", Status: domain.StatusDone, Index: 1}}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls = %#v, want %#v", calls, want)
	}
	if s.Tasks[1].Status != domain.StatusDone {
		t.Fatalf("local status not updated: %+v", s.Tasks[1])
	}
}

func TestColumnDragReorders(t *testing.T) {
	s, calls := Reconcile(fixture(), DragEnd{Active: *columnItem("done"), Over: columnItem("inProgress")})
	want := []domain.Status{domain.StatusTodo, domain.StatusDone, domain.StatusInProgress}
	if !reflect.DeepEqual(statuses(s.Columns), want) {
		t.Fatalf("columns = %v, want %v", statuses(s.Columns), want)
	}
	if !reflect.DeepEqual(calls, []Call{SetColumnOrder{Order: want}}) {
		t.Fatalf("unexpected calls %#v", calls)
	}
	for i, col := range s.Columns {
		if col.Position != i {
			t.Fatalf("column %s position %d, want %d", col.Status, col.Position, i)
		}
	}
}

func TestColumnDragOntoLockedColumnRefused(t *testing.T) {
	start := fixture()
	s, calls := Reconcile(start, DragEnd{Active: *columnItem("done"), Over: columnItem("todo")})
	if len(calls) != 0 {
		t.Fatalf("expected no writes, got %v", calls)
	}
	if !reflect.DeepEqual(statuses(s.Columns), statuses(start.Columns)) {
		t.Fatalf("columns changed: %v", statuses(s.Columns))
	}
}

func TestColumnDragOntoTaskUsesItsColumn(t *testing.T) {
	s, calls := Reconcile(fixture(), DragEnd{Active: *columnItem("inProgress"), Over: taskItem("d")})
	want := []domain.Status{domain.StatusTodo, domain.StatusDone, domain.StatusInProgress}
	if !reflect.DeepEqual(statuses(s.Columns), want) || len(calls) != 1 {
		t.Fatalf("columns = %v, calls = %v", statuses(s.Columns), calls)
	}
}

func TestClickLockToggles(t *testing.T) {
	s, calls := Reconcile(fixture(), ClickLock{Status: domain.StatusTodo})
	if s.Columns[0].IsLock {
		t.Fatal("expected todo unlocked")
	}
	if !reflect.DeepEqual(calls, []Call{ToggleColumnLock{Status: domain.StatusTodo}}) {
		t.Fatalf("unexpected calls %#v", calls)
	}

	_, calls = Reconcile(s, ClickLock{Status: "archive"})
	if len(calls) != 0 {
		t.Fatalf("unknown column should not write, got %v", calls)
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		from, to int
		want     []int
	}{
		{0, 2, []int{1, 2, 0, 3}},
		{3, 0, []int{3, 0, 1, 2}},
		{1, 1, []int{0, 1, 2, 3}},
		{-1, 2, []int{0, 1, 2, 3}},
		{0, 9, []int{0, 1, 2, 3}},
	}
	for _, tc := range cases {
		if got := move([]int{0, 1, 2, 3}, tc.from, tc.to); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("move(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

type recordingRepo struct {
	columns []domain.Column
	tasks   []domain.Task
	calls   []string
	failOn  string
}

func (r *recordingRepo) record(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failOn {
		return errors.New("write failed")
	}
	return nil
}

func (r *recordingRepo) GetTasks(context.Context) ([]domain.Task, error)     { return r.tasks, nil }
func (r *recordingRepo) GetColumns(context.Context) ([]domain.Column, error) { return r.columns, nil }
func (r *recordingRepo) SetTaskOrder(context.Context, []string) error        { return r.record("SetTaskOrder") }
func (r *recordingRepo) SetColumnOrder(context.Context, []domain.Status) error {
	return r.record("SetColumnOrder")
}
func (r *recordingRepo) SetTaskStatus(context.Context, string, domain.Status, int) error {
	return r.record("SetTaskStatus")
}
func (r *recordingRepo) ToggleColumnLock(context.Context, domain.Status) error {
	return r.record("ToggleColumnLock")
}

func TestSessionWritesOnlyOnDrop(t *testing.T) {
	base := fixture()
	repo := &recordingRepo{columns: base.Columns, tasks: base.Tasks}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	session, err := Open(ctx, repo, now)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	events := []Event{
		DragStart{Active: *taskItem("b")},
		DragOver{Active: *taskItem("b"), Over: taskItem("c")},
		DragOver{Active: *taskItem("b"), Over: taskItem("d")},
		DragOver{Active: *taskItem("b"), Over: nil},
	}
	for _, ev := range events {
		if _, _, err := session.Handle(ctx, ev, now); err != nil {
			t.Fatalf("handle %T: %v", ev, err)
		}
	}
	if len(repo.calls) != 0 {
		t.Fatalf("expected no writes before drop, got %v", repo.calls)
	}

	state, _, err := session.Handle(ctx, DragEnd{Active: *taskItem("b"), Over: taskItem("d")}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("drag end: %v", err)
	}
	if !reflect.DeepEqual(repo.calls, []string{"SetTaskStatus"}) {
		t.Fatalf("writes = %v", repo.calls)
	}
	if state.Tasks[state.TaskIndex("b")].Status != domain.StatusDone {
		t.Fatalf("expected b done, got %+v", state.Tasks)
	}
	if !session.Touched().Equal(now.Add(time.Second)) {
		t.Fatalf("touched not updated: %v", session.Touched())
	}
}

func TestSessionReportsWriteFailure(t *testing.T) {
	base := fixture()
	repo := &recordingRepo{columns: base.Columns, tasks: base.Tasks, failOn: "ToggleColumnLock"}
	ctx := context.Background()

	session, err := Open(ctx, repo, time.Now())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	state, _, err := session.Handle(ctx, ClickLock{Status: domain.StatusDone}, time.Now())
	if err == nil {
		t.Fatal("expected write error")
	}
	if !state.Columns[2].IsLock {
		t.Fatal("local mirror should keep the optimistic toggle")
	}
}
