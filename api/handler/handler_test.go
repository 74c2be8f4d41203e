package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository/sqlite"
	"github.com/fastygo/taskboard/usecase"
	boardUC "github.com/fastygo/taskboard/usecase/board"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type fixture struct {
	task  *TaskHandler
	board *BoardHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close(db) })

	tasks := sqlite.NewTaskRepository(db)
	columns := sqlite.NewColumnRepository(db)
	if err := columns.Init(context.Background(), "u1", domain.DefaultColumns()); err != nil {
		t.Fatalf("init columns: %v", err)
	}

	adapter := httpcontext.NewAdapter(time.Second)
	locales := locale.MustLoad("en")

	boardUseCase := boardUC.New(tasks, columns, nil, time.Minute, nil)
	dispatcher := usecase.NewDispatcher()
	boardUseCase.Register(dispatcher)

	return fixture{
		task:  NewTaskHandler(taskUC.New(tasks, nil, locales, time.UTC, nil), locales, time.UTC, adapter, nil),
		board: NewBoardHandler(dispatcher, boardUseCase, adapter, nil),
	}
}

func request(method, uri, userID, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if userID != "" {
		ctx.Request.Header.Set(httpcontext.HeaderUserID, userID)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	return ctx
}

// envelope keeps the data payload undecoded until the test knows its shape.
type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Meta   map[string]any  `json:"meta"`
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	if err := sonic.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode %s: %v", ctx.Response.Body(), err)
	}
	return env
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.ErrTitleRequired, http.StatusBadRequest},
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidStatus), http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := mapError(tc.err); status != tc.status {
			t.Fatalf("mapError(%v) = %d, want %d", tc.err, status, tc.status)
		}
	}
}

func TestCreateAndListTasks(t *testing.T) {
	f := newFixture(t)

	ctx := request(http.MethodPost, "/api/v1/tasks", "u1", `{"title":"  Write report ","tags":["work"],"priority":"high"}`)
	f.task.CreateTask(ctx)
	if ctx.Response.StatusCode() != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var created domain.Task
	if err := sonic.Unmarshal(decodeEnvelope(t, ctx).Data, &created); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if created.Title != "Write report" || created.Status != domain.StatusTodo || created.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task %+v", created)
	}

	ctx = request(http.MethodPost, "/api/v1/tasks", "u1", `{"title":"Later","deferred_date":"2030-01-01"}`)
	f.task.CreateTask(ctx)
	if ctx.Response.StatusCode() != http.StatusCreated {
		t.Fatalf("deferred create status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodGet, "/api/v1/tasks?tags=work&sort=highToLow", "u1", "")
	f.task.GetTasks(ctx)
	env := decodeEnvelope(t, ctx)
	var tasks []domain.Task
	if err := sonic.Unmarshal(env.Data, &tasks); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("board list = %+v", tasks)
	}
	if env.Meta["total"] != float64(1) {
		t.Fatalf("meta = %v", env.Meta)
	}

	ctx = request(http.MethodGet, "/api/v1/tasks?status=deferred", "u1", "")
	f.task.GetTasks(ctx)
	if err := sonic.Unmarshal(decodeEnvelope(t, ctx).Data, &tasks); err != nil {
		t.Fatalf("decode deferred: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Later" {
		t.Fatalf("deferred list = %+v", tasks)
	}
}

func TestTaskRequestValidation(t *testing.T) {
	f := newFixture(t)

	ctx := request(http.MethodPost, "/api/v1/tasks", "", `{"title":"x"}`)
	f.task.CreateTask(ctx)
	if ctx.Response.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("anonymous create status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodPost, "/api/v1/tasks", "u1", `{"title":"   "}`)
	f.task.CreateTask(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("blank title status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodPost, "/api/v1/tasks", "u1", `{not json`)
	f.task.CreateTask(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("bad payload status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodGet, "/api/v1/tasks?priority=urgent", "u1", "")
	f.task.GetTasks(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("bad priority status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodGet, "/api/v1/tasks/missing", "u1", "")
	ctx.SetUserValue("id", "missing")
	f.task.GetTask(ctx)
	if ctx.Response.StatusCode() != http.StatusNotFound {
		t.Fatalf("missing task status = %d", ctx.Response.StatusCode())
	}
}

func TestBoardEndpoints(t *testing.T) {
	f := newFixture(t)

	ctx := request(http.MethodPost, "/api/v1/tasks", "u1", `{"title":"Card"}`)
	f.task.CreateTask(ctx)

	ctx = request(http.MethodGet, "/api/v1/board", "u1", "")
	f.board.GetBoard(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("board status = %d body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	var view boardUC.View
	if err := sonic.Unmarshal(decodeEnvelope(t, ctx).Data, &view); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if len(view.Columns) != 3 || view.Columns[0].Status != domain.StatusTodo || len(view.Columns[0].Tasks) != 1 {
		t.Fatalf("board view = %+v", view)
	}

	ctx = request(http.MethodPost, "/api/v1/board/events", "u1", `{"type":"drag_sideways"}`)
	f.board.Event(ctx)
	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("unknown event status = %d", ctx.Response.StatusCode())
	}

	ctx = request(http.MethodPost, "/api/v1/board/columns/done/lock", "u1", "")
	ctx.SetUserValue("status", "done")
	f.board.ToggleLock(ctx)
	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("toggle lock status = %d body = %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	ctx = request(http.MethodPost, "/api/v1/board/columns/deferred/lock", "u1", "")
	ctx.SetUserValue("status", "deferred")
	f.board.ToggleLock(ctx)
	if ctx.Response.StatusCode() != http.StatusNotFound {
		t.Fatalf("non-column lock status = %d", ctx.Response.StatusCode())
	}
}
