package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/middleware"
	"github.com/kendall-kelly/canteen-orders/services"
)

type turnFunc func(ctx context.Context, conv *services.Conversation) (interface{}, error)

// runTurn loads the chat session, runs one engine operation and saves the
// session. Infrastructure failures abort the turn without saving so the
// stored state stays as it was before the request.
func runTurn(c *gin.Context, operation string, fn turnFunc) {
	handle, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CHAT_ID", "Chat ID must be a number")
		return
	}

	ctx := c.Request.Context()
	key := services.SessionKey(handle)
	state, err := sessionStore.Load(ctx, key)
	if err != nil {
		middleware.RecordOrderOperation(operation, middleware.OutcomeError)
		respondInternalError(c, operation, err)
		return
	}

	conv := orderService.Resume(handle, state)
	data, opErr := fn(ctx, conv)

	engineErr, typed := services.AsEngineError(opErr)
	if opErr != nil && !typed {
		middleware.RecordOrderOperation(operation, middleware.OutcomeError)
		respondInternalError(c, operation, opErr)
		return
	}

	if err := sessionStore.Save(ctx, key, conv.State()); err != nil {
		middleware.RecordOrderOperation(operation, middleware.OutcomeError)
		respondInternalError(c, operation, err)
		return
	}

	if engineErr != nil {
		middleware.RecordOrderOperation(operation, engineErr.Code)
		respondEngineError(c, engineErr)
		return
	}
	middleware.RecordOrderOperation(operation, middleware.OutcomeOK)
	respond(c, http.StatusOK, data)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_"+strings.ToUpper(name), name+" must be a number")
		return 0, false
	}
	return uint(v), true
}
