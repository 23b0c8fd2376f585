package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/middleware"
)

// ExportRequest names the day whose orders are handed over. Today is used
// when Date is empty.
type ExportRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ExportOrders handles POST /api/v1/admin/exports - uploads the day's
// closed orders as CSV and marks them exported (operators only)
func ExportOrders(c *gin.Context) {
	if exportService == nil {
		respondError(c, http.StatusServiceUnavailable, "EXPORT_DISABLED", "Order export is not configured")
		return
	}

	var req ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
	}

	day := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, req.Date, time.Local)
		if err != nil {
			respondValidationError(c, err)
			return
		}
		day = parsed
	}

	requestedBy := requester(c)
	result, err := exportService.ExportDay(c.Request.Context(), day)
	if err != nil {
		middleware.RecordOrderOperation("export", middleware.OutcomeError)
		slog.Error("order export failed", "day", day.Format(time.DateOnly), "requested_by", requestedBy, "error", err)
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export orders")
		return
	}
	result.RequestedBy = requestedBy

	middleware.RecordOrderOperation("export", middleware.OutcomeOK)
	slog.Info("export requested", "day", result.Day, "orders", result.OrderCount, "requested_by", requestedBy)
	respond(c, http.StatusOK, result)
}

// requester names the operator behind the request, preferring the e-mail
// from the identity provider over the token subject.
func requester(c *gin.Context) string {
	subject, _ := middleware.GetOperatorID(c)
	if operatorDirectory == nil {
		return subject
	}

	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return subject
	}
	info, err := operatorDirectory.Lookup(c.Request.Context(), token)
	if err != nil {
		slog.Warn("operator lookup failed", "subject", subject, "error", err)
		return subject
	}
	if info.Email != "" {
		return info.Email
	}
	return subject
}
