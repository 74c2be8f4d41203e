package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/internal/taskquery"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc       *taskUC.UseCase
	locales  *locale.Bundle
	location *time.Location
}

func NewTaskHandler(
	uc *taskUC.UseCase,
	locales *locale.Bundle,
	location *time.Location,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *TaskHandler {
	if location == nil {
		location = time.UTC
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		locales:     locales,
		location:    location,
	}
}

// @Summary List tasks of one view
// @Tags tasks
// @Param status query string false "deferred or expired; board columns when empty"
// @Param tags query string false "comma separated, all must match"
// @Param deadline query string false "1 day, 7 days or monthly"
// @Param priority query string false "low, medium or high"
// @Param sort query string false "lowToHigh, highToLow or reset"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	deadline, err := taskquery.ParseDeadline(string(args.Peek("deadline")))
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), err.Error(), nil))
		return
	}
	order, err := taskquery.ParseOrder(string(args.Peek("sort")))
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), err.Error(), nil))
		return
	}
	priority := domain.Priority(args.Peek("priority"))
	if priority != "" && !priority.Valid() {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), domain.ErrInvalidPriority.Error(), nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, userID, taskUC.ListQuery{
		Status: domain.Status(args.Peek("status")),
		Criteria: taskquery.Criteria{
			Tags:     transport.SplitList(string(args.Peek("tags"))),
			Deadline: deadline,
			Priority: priority,
		},
		Order: order,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(tasks, transport.PageMeta{Total: len(tasks)}))
}

// @Summary Get one task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create a task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deferred, err := transport.ParseDate(req.DeferredDate, h.location)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := h.uc.Create(stdCtx, userID, taskUC.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Tags:         req.Tags,
		Deadline:     req.Deadline,
		Priority:     domain.Priority(req.Priority),
		DeferredDate: deferred,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Edit a task and record the change history
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.TaskPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	patch, err := req.Patch(h.location)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := h.uc.Edit(stdCtx, userID, pathParam(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Change the status of a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetStatus(stdCtx, userID, pathParam(ctx, "id"), domain.Status(req.Status)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Move a deferred task back to the board
// @Tags tasks
// @Router /api/v1/tasks/{id}/restore [post]
func (h *TaskHandler) RestoreTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Restore(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Set the task order
// @Tags tasks
// @Router /api/v1/tasks/order [put]
func (h *TaskHandler) ReorderTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.OrderRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Reorder(stdCtx, userID, req.IDs); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Localized change history of a task
// @Tags tasks
// @Param lang query string false "en, ru or ukr; Accept-Language otherwise"
// @Router /api/v1/tasks/{id}/history [get]
func (h *TaskHandler) History(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lang := h.locales.Resolve(
		string(ctx.QueryArgs().Peek("lang")),
		httpcontext.String(stdCtx, httpcontext.KeyAcceptLanguage),
	)
	entries, err := h.uc.History(stdCtx, userID, pathParam(ctx, "id"), lang)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(entries, map[string]string{"language": lang}))
}
