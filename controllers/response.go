package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/services"
)

// engineStatus maps engine error codes to HTTP statuses.
var engineStatus = map[string]int{
	services.ErrUnknownCustomer.Code:      http.StatusNotFound,
	services.ErrNoActivePermission.Code:   http.StatusForbidden,
	services.ErrStaleMenu.Code:            http.StatusConflict,
	services.ErrInvalidOrder.Code:         http.StatusConflict,
	services.ErrNoFixedItems.Code:         http.StatusUnprocessableEntity,
	services.ErrNoPositionsSelected.Code:  http.StatusUnprocessableEntity,
	services.ErrInvalidQuantity.Code:      http.StatusUnprocessableEntity,
	services.ErrInvalidState.Code:         http.StatusConflict,
	services.ErrUnknownPosition.Code:      http.StatusNotFound,
	services.ErrUnknownDeliveryPlace.Code: http.StatusNotFound,
	services.ErrOrderNotDeletable.Code:    http.StatusConflict,
}

// softOutcomes are engine results that end a branch normally. They are
// answered with 200 and a flag instead of an error.
var softOutcomes = map[string]string{
	services.ErrNoValidMenus.Code:    "no_menus",
	services.ErrPagesExhausted.Code:  "exhausted",
	services.ErrEmptyCollection.Code: "empty",
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondEngineError(c *gin.Context, err *services.EngineError) {
	if flag, ok := softOutcomes[err.Code]; ok {
		respond(c, http.StatusOK, gin.H{
			flag:      true,
			"message": err.Message,
		})
		return
	}

	status, ok := engineStatus[err.Code]
	if !ok {
		status = http.StatusBadRequest
	}
	respondError(c, status, err.Code, err.Error())
}

func respondInternalError(c *gin.Context, operation string, err error) {
	slog.Error("turn failed", "operation", operation, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again")
}
