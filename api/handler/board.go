package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase"
	boardUC "github.com/fastygo/taskboard/usecase/board"
)

// BoardHandler routes drag events by name through the dispatcher.
type BoardHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
	uc         *boardUC.UseCase
}

func NewBoardHandler(dispatcher *usecase.Dispatcher, uc *boardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
		uc:          uc,
	}
}

// @Summary Board columns with their tasks
// @Tags board
// @Router /api/v1/board [get]
func (h *BoardHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.dispatcher.ExecuteQuery(stdCtx, boardUC.QueryBoard, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Feed one drag event into the board
// @Tags board
// @Router /api/v1/board/events [post]
func (h *BoardHandler) Event(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.BoardEventRequest
	if !h.decode(ctx, &req) {
		return
	}
	if !h.dispatcher.HasCommand(req.Type) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unknown event type "+req.Type, h.dispatcher.Commands()))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.dispatcher.ExecuteCommand(stdCtx, req.Type, boardUC.Command{
		UserID: userID,
		Active: req.Active,
		Over:   req.Over,
		Status: domain.Status(req.Status),
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Toggle the lock of a column
// @Tags board
// @Router /api/v1/board/columns/{status}/lock [post]
func (h *BoardHandler) ToggleLock(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.ToggleLock(stdCtx, userID, domain.Status(pathParam(ctx, "status")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
