package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	kanban "github.com/fastygo/taskboard/internal/board"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// Command names routed through the dispatcher.
const (
	CommandDragStart = "drag_start"
	CommandDragOver  = "drag_over"
	CommandDragEnd   = "drag_end"
	CommandClickLock = "click_lock"

	QueryBoard = "board"
)

// Command is the payload of every board command.
type Command struct {
	UserID string
	Active kanban.Item
	Over   *kanban.Item
	Status domain.Status
}

// Result is the mirror after an event and the number of writes it committed.
type Result struct {
	State  kanban.State `json:"state"`
	Writes int          `json:"writes"`
}

// ColumnView is one lane with its tasks in board order.
type ColumnView struct {
	domain.Column
	Tasks []domain.Task `json:"tasks"`
}

// View is the rendered board of one user.
type View struct {
	Columns  []ColumnView `json:"columns"`
	Deferred int          `json:"deferred"`
	Expired  int          `json:"expired"`
}

type userSession struct {
	mu      sync.Mutex
	session *kanban.Session
	refs    int // guarded by UseCase.mu
}

type UseCase struct {
	tasks   repository.TaskRepository
	columns repository.ColumnRepository
	buffer  usecase.OperationBuffer
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*userSession
}

func New(
	tasks repository.TaskRepository,
	columns repository.ColumnRepository,
	buffer usecase.OperationBuffer,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 5 * time.Minute
	}
	return &UseCase{
		tasks:    tasks,
		columns:  columns,
		buffer:   buffer,
		ttl:      sessionTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*userSession),
	}
}

// Register wires the board commands and the board query into d.
func (uc *UseCase) Register(d *usecase.Dispatcher) {
	d.RegisterCommand(CommandDragStart, uc.command(func(c Command) kanban.Event {
		return kanban.DragStart{Active: c.Active}
	}))
	d.RegisterCommand(CommandDragOver, uc.command(func(c Command) kanban.Event {
		return kanban.DragOver{Active: c.Active, Over: c.Over}
	}))
	d.RegisterCommand(CommandDragEnd, uc.command(func(c Command) kanban.Event {
		return kanban.DragEnd{Active: c.Active, Over: c.Over}
	}))
	d.RegisterCommand(CommandClickLock, uc.command(func(c Command) kanban.Event {
		return kanban.ClickLock{Status: c.Status}
	}))
	d.RegisterQuery(QueryBoard, func(ctx context.Context, params interface{}) (interface{}, error) {
		userID, ok := params.(string)
		if !ok {
			return nil, fmt.Errorf("board query expects a user id, got %T", params)
		}
		return uc.View(ctx, userID)
	})
}

func (uc *UseCase) command(build func(Command) kanban.Event) usecase.CommandHandler {
	return func(ctx context.Context, payload interface{}) (interface{}, error) {
		cmd, ok := payload.(Command)
		if !ok {
			return nil, fmt.Errorf("board command expects Command, got %T", payload)
		}
		if cmd.UserID == "" {
			return nil, domain.ErrUnauthorized
		}
		return uc.Handle(ctx, cmd.UserID, build(cmd))
	}
}

// Handle feeds ev into the user's drag session. A DragStart always opens a fresh session;
// any other event reuses the live one or loads the board when there is none. The session
// ends with the gesture or when a write fails.
func (uc *UseCase) Handle(ctx context.Context, userID string, ev kanban.Event) (*Result, error) {
	now := uc.now()
	entry := uc.acquire(userID, now)
	defer uc.release(entry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	_, starting := ev.(kanban.DragStart)
	if starting || entry.session == nil || now.Sub(entry.session.Touched()) > uc.ttl {
		session, err := kanban.Open(ctx, uc.repoFor(userID), now)
		if err != nil {
			entry.session = nil
			return nil, err
		}
		entry.session = session
	}

	state, calls, err := entry.session.Handle(ctx, ev, now)
	if err != nil {
		entry.session = nil
		uc.logger.Warn("board write failed",
			zap.String("user_id", userID),
			zap.String("event", fmt.Sprintf("%T", ev)),
			zap.Error(err),
		)
		return nil, err
	}
	if gestureOver(ev, state) {
		entry.session = nil
	}
	return &Result{State: state, Writes: len(calls)}, nil
}

// ToggleLock flips the lock flag of one column.
func (uc *UseCase) ToggleLock(ctx context.Context, userID string, status domain.Status) (*Result, error) {
	if !status.IsColumn() {
		return nil, domain.ErrColumnNotFound
	}
	return uc.Handle(ctx, userID, kanban.ClickLock{Status: status})
}

// View groups the user's tasks by column. Deferred and expired tasks are only counted.
func (uc *UseCase) View(ctx context.Context, userID string) (*View, error) {
	state, err := kanban.Load(ctx, uc.repoFor(userID))
	if err != nil {
		return nil, err
	}
	view := &View{Columns: make([]ColumnView, 0, len(state.Columns))}
	for _, col := range state.Columns {
		tasks := state.TasksIn(col.Status)
		if tasks == nil {
			tasks = []domain.Task{}
		}
		view.Columns = append(view.Columns, ColumnView{Column: col, Tasks: tasks})
	}
	for _, task := range state.Tasks {
		switch task.Status {
		case domain.StatusDeferred:
			view.Deferred++
		case domain.StatusExpired:
			view.Expired++
		}
	}
	return view, nil
}

// ActiveSessions reports how many users have a drag session in flight or in use.
func (uc *UseCase) ActiveSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	n := 0
	for _, e := range uc.sessions {
		if e.refs > 0 || e.session != nil {
			n++
		}
	}
	return n
}

// acquire returns the session slot of userID and drops idle slots whose session ended or
// outlived the TTL.
func (uc *UseCase) acquire(userID string, now time.Time) *userSession {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for id, e := range uc.sessions {
		if e.refs > 0 {
			continue
		}
		if e.session == nil || now.Sub(e.session.Touched()) > uc.ttl {
			delete(uc.sessions, id)
		}
	}

	e, ok := uc.sessions[userID]
	if !ok {
		e = &userSession{}
		uc.sessions[userID] = e
	}
	e.refs++
	return e
}

func (uc *UseCase) release(e *userSession) {
	uc.mu.Lock()
	e.refs--
	uc.mu.Unlock()
}

func (uc *UseCase) repoFor(userID string) kanban.Repository {
	return &userBoard{
		userID:  userID,
		tasks:   uc.tasks,
		columns: uc.columns,
		buffer:  uc.buffer,
		logger:  uc.logger,
	}
}

func gestureOver(ev kanban.Event, state kanban.State) bool {
	switch ev.(type) {
	case kanban.DragEnd:
		return true
	case kanban.ClickLock:
		return state.ActiveColumn == nil && state.ActiveTask == nil
	}
	return false
}
