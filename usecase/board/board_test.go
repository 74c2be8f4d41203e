package board

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	kanban "github.com/fastygo/taskboard/internal/board"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

type memStore struct {
	repository.TaskRepository
	tasks   []domain.Task
	columns []domain.Column
	moves   []string
	lists   int
	moveErr error
}

func (m *memStore) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	m.lists++
	var out []domain.Task
	for _, task := range m.tasks {
		if task.UserID == filter.UserID {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

func (m *memStore) Move(ctx context.Context, userID, id string, status domain.Status, index int) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moves = append(m.moves, id+":"+string(status))
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Status = status
		}
	}
	return nil
}

type memColumns struct {
	repository.ColumnRepository
	store   *memStore
	toggles []domain.Status
	inits   int
	initErr error
}

func (c *memColumns) List(ctx context.Context, userID string) ([]domain.Column, error) {
	return append([]domain.Column(nil), c.store.columns...), nil
}

func (c *memColumns) ToggleLock(ctx context.Context, userID string, status domain.Status) error {
	c.toggles = append(c.toggles, status)
	for i := range c.store.columns {
		if c.store.columns[i].Status == status {
			c.store.columns[i].IsLock = !c.store.columns[i].IsLock
			return nil
		}
	}
	return domain.ErrColumnNotFound
}

func (c *memColumns) Init(ctx context.Context, userID string, columns []domain.Column) error {
	c.inits++
	if c.initErr != nil {
		return c.initErr
	}
	if len(c.store.columns) == 0 {
		c.store.columns = append([]domain.Column(nil), columns...)
	}
	return nil
}

func (c *memColumns) Reorder(ctx context.Context, userID string, order []domain.Status) error {
	return nil
}

type recordingBuffer struct {
	tasks []domain.Task
	ops   []string
}

func (b *recordingBuffer) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	return nil
}

func (b *recordingBuffer) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	b.ops = append(b.ops, operation)
	b.tasks = append(b.tasks, *task)
	return nil
}

type fixture struct {
	store   *memStore
	columns *memColumns
	buffer  *recordingBuffer
	uc      *UseCase
	d       *usecase.Dispatcher
	now     time.Time
}

func newFixture() *fixture {
	store := &memStore{
		columns: domain.DefaultColumns(),
		tasks: []domain.Task{
			{ID: "a", UserID: "u1", Status: domain.StatusTodo, Position: 0},
			{ID: "b", UserID: "u1", Status: domain.StatusTodo, Position: 1},
			{ID: "c", UserID: "u1", Status: domain.StatusInProgress, Position: 2},
			{ID: "d", UserID: "u1", Status: domain.StatusDeferred, Position: 3},
			{ID: "e", UserID: "u1", Status: domain.StatusExpired, Position: 4},
			{ID: "x", UserID: "u2", Status: domain.StatusTodo, Position: 0},
		},
	}
	f := &fixture{
		store:   store,
		columns: &memColumns{store: store},
		buffer:  &recordingBuffer{},
		d:       usecase.NewDispatcher(),
		now:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	f.uc = New(store, f.columns, f.buffer, time.Minute, nil)
	f.uc.now = func() time.Time { return f.now }
	f.uc.Register(f.d)
	return f
}

func (f *fixture) exec(t *testing.T, name string, cmd Command) *Result {
	t.Helper()
	out, err := f.d.ExecuteCommand(context.Background(), name, cmd)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return out.(*Result)
}

func task(id string) *kanban.Item { return &kanban.Item{Kind: kanban.KindTask, ID: id} }

func column(status domain.Status) *kanban.Item {
	return &kanban.Item{Kind: kanban.KindColumn, ID: string(status)}
}

func TestGestureWritesOnceOnDrop(t *testing.T) {
	f := newFixture()

	f.exec(t, CommandDragStart, Command{UserID: "u1", Active: *task("a")})
	over := f.exec(t, CommandDragOver, Command{UserID: "u1", Active: *task("a"), Over: column(domain.StatusDone)})
	if over.Writes != 0 || over.State.Tasks[over.State.TaskIndex("a")].Status != domain.StatusDone {
		t.Fatalf("unexpected drag over result %+v", over)
	}
	f.exec(t, CommandDragOver, Command{UserID: "u1", Active: *task("a"), Over: task("c")})
	if len(f.store.moves) != 0 {
		t.Fatalf("hover must not write, got %v", f.store.moves)
	}
	if f.store.lists != 1 {
		t.Fatalf("expected one board load for the gesture, got %d", f.store.lists)
	}

	end := f.exec(t, CommandDragEnd, Command{UserID: "u1", Active: *task("a"), Over: task("c")})
	if end.Writes != 1 || !reflect.DeepEqual(f.store.moves, []string{"a:inProgress"}) {
		t.Fatalf("writes=%d moves=%v", end.Writes, f.store.moves)
	}
	if end.State.ActiveTask != nil {
		t.Fatal("drag end must clear the active task")
	}
	if n := f.uc.ActiveSessions(); n != 0 {
		t.Fatalf("session should be discarded after drag end, %d left", n)
	}
}

func TestEventWithoutSessionLoadsBoard(t *testing.T) {
	f := newFixture()

	res := f.exec(t, CommandDragEnd, Command{UserID: "u1", Active: *task("b"), Over: column(domain.StatusDone)})
	if res.Writes != 1 || !reflect.DeepEqual(f.store.moves, []string{"b:done"}) {
		t.Fatalf("writes=%d moves=%v", res.Writes, f.store.moves)
	}
	if idx := res.State.TaskIndex("x"); idx >= 0 {
		t.Fatal("another user's task leaked into the session")
	}
}

func TestExpiredSessionIsReloaded(t *testing.T) {
	f := newFixture()

	f.exec(t, CommandDragStart, Command{UserID: "u1", Active: *task("a")})
	f.exec(t, CommandDragOver, Command{UserID: "u1", Active: *task("a"), Over: column(domain.StatusDone)})

	f.now = f.now.Add(2 * time.Minute)
	res := f.exec(t, CommandDragOver, Command{UserID: "u1", Active: *task("b")})
	if f.store.lists != 2 {
		t.Fatalf("expected a reload after TTL, lists=%d", f.store.lists)
	}
	if got := res.State.Tasks[res.State.TaskIndex("a")].Status; got != domain.StatusTodo {
		t.Fatalf("stale hover state survived expiry: %s", got)
	}
}

func TestClickLock(t *testing.T) {
	f := newFixture()

	res := f.exec(t, CommandClickLock, Command{UserID: "u1", Status: domain.StatusDone})
	if res.Writes != 1 || !res.State.Columns[2].IsLock {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := f.uc.ToggleLock(context.Background(), "u1", domain.StatusDone); err != nil {
		t.Fatalf("toggle lock: %v", err)
	}
	if !reflect.DeepEqual(f.columns.toggles, []domain.Status{domain.StatusDone, domain.StatusDone}) || f.store.columns[2].IsLock {
		t.Fatalf("toggles=%v columns=%+v", f.columns.toggles, f.store.columns)
	}
	if _, err := f.uc.ToggleLock(context.Background(), "u1", domain.StatusDeferred); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestMoveFailures(t *testing.T) {
	f := newFixture()
	f.store.moveErr = errors.New("dial tcp: connection refused")

	res := f.exec(t, CommandDragEnd, Command{UserID: "u1", Active: *task("a"), Over: column(domain.StatusDone)})
	if res.Writes != 1 {
		t.Fatalf("expected buffered write to count, got %+v", res)
	}
	if !reflect.DeepEqual(f.buffer.ops, []string{usecase.OperationMove}) {
		t.Fatalf("buffered ops = %v", f.buffer.ops)
	}
	if buffered := f.buffer.tasks[0]; buffered.ID != "a" || buffered.UserID != "u1" || buffered.Status != domain.StatusDone || buffered.Position != 0 {
		t.Fatalf("unexpected buffered task %+v", buffered)
	}

	f.store.moveErr = domain.ErrTaskNotFound
	_, err := f.d.ExecuteCommand(context.Background(), CommandDragEnd, Command{UserID: "u1", Active: *task("a"), Over: column(domain.StatusDone)})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if len(f.buffer.ops) != 1 {
		t.Fatalf("domain errors must not be buffered: %v", f.buffer.ops)
	}
}

func TestCommandRequiresUser(t *testing.T) {
	f := newFixture()
	if _, err := f.d.ExecuteCommand(context.Background(), CommandDragStart, Command{Active: *task("a")}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.d.ExecuteCommand(context.Background(), CommandDragStart, "bogus"); err == nil {
		t.Fatal("expected payload type error")
	}
}

func TestBoardView(t *testing.T) {
	f := newFixture()

	out, err := f.d.ExecuteQuery(context.Background(), QueryBoard, "u1")
	if err != nil {
		t.Fatalf("board query: %v", err)
	}
	view := out.(*View)
	if len(view.Columns) != 3 || view.Deferred != 1 || view.Expired != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	var got [][]string
	for _, col := range view.Columns {
		var ids []string
		for _, task := range col.Tasks {
			ids = append(ids, task.ID)
		}
		got = append(got, ids)
	}
	want := [][]string{{"a", "b"}, {"c"}, nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
}

func TestBoardSeedsMissingColumns(t *testing.T) {
	f := newFixture()
	f.store.columns = nil
	ctx := context.Background()

	view, err := f.uc.View(ctx, "u1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Columns) != 3 || f.columns.inits != 1 {
		t.Fatalf("columns = %+v, inits = %d", view.Columns, f.columns.inits)
	}
	if len(view.Columns[0].Tasks) != 2 {
		t.Fatalf("todo lane = %+v", view.Columns[0].Tasks)
	}

	if _, err := f.uc.View(ctx, "u1"); err != nil || f.columns.inits != 1 {
		t.Fatalf("second view seeded again: inits = %d, err = %v", f.columns.inits, err)
	}
}

func TestBoardSeedFailureIsReturned(t *testing.T) {
	f := newFixture()
	f.store.columns = nil
	f.columns.initErr = errors.New("store blip")

	if _, err := f.uc.View(context.Background(), "u1"); err == nil {
		t.Fatal("expected seed error")
	}
}
