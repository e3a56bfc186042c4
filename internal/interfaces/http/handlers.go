package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/trip-expenses/internal/application/service"
	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/workflow"
)

// Version is reported by the health check
var Version = "dev"

// Handlers contains all HTTP request handlers
type Handlers struct {
	chat      service.ChatService
	dashboard service.DashboardService
	logger    Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(chat service.ChatService, dashboard service.DashboardService, logger Logger) *Handlers {
	return &Handlers{
		chat:      chat,
		dashboard: dashboard,
		logger:    logger,
		now:       time.Now,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// StartSessionRequest is the body of POST /api/chat/sessions
type StartSessionRequest struct {
	Mode entity.EntryMode `json:"mode"`
}

// SendMessageRequest is the body of POST /api/chat/sessions/:id/messages
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// MessageResponse is the result of one chat message
type MessageResponse struct {
	SessionID string               `json:"session_id"`
	Outcome   wizard.Outcome       `json:"outcome"`
	State     workflow.State       `json:"state"`
	Messages  []entity.ChatMessage `json:"messages"`
	Draft     entity.TripDraft     `json:"draft"`
	TripID    string               `json:"trip_id,omitempty"`
}

// TripListRequest holds query parameters for trip listings
type TripListRequest struct {
	UserID     string `form:"user_id"`
	TripType   string `form:"trip_type"`
	CostCenter string `form:"cost_center"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit"`
}

// SummaryRequest holds query parameters for the admin summary
type SummaryRequest struct {
	TripListRequest
	Year int `form:"year"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: h.now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
	})
}

// StartSession handles POST /api/chat/sessions
func (h *Handlers) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid request body", err)
			return
		}
	}
	if req.Mode != "" && !req.Mode.IsValid() {
		h.badRequest(c, "invalid mode", fmt.Errorf("mode %q", req.Mode))
		return
	}

	principal := principalFrom(c)
	session, err := h.chat.StartSession(c.Request.Context(), principal.UserID, req.Mode)
	if err != nil {
		h.writeError(c, "Failed to start session", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: session})
}

// GetSession handles GET /api/chat/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	principal := principalFrom(c)
	session, err := h.chat.GetSession(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to get session", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: session})
}

// SendMessage handles POST /api/chat/sessions/:id/messages.
// A failed save still answers 200: the draft is kept and the user may retry.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "text is required", err)
		return
	}

	principal := principalFrom(c)
	result, err := h.chat.SendMessage(c.Request.Context(), principal.UserID, c.Param("id"), req.Text)
	if err != nil {
		h.writeError(c, "Failed to handle message", err)
		return
	}

	resp := Response{
		Success: result.Reply.Err == nil,
		Data: MessageResponse{
			SessionID: result.Session.ID,
			Outcome:   result.Reply.Outcome,
			State:     result.Reply.State,
			Messages:  result.Reply.Messages,
			Draft:     result.Session.Draft,
			TripID:    result.Reply.TripID,
		},
	}
	if result.Reply.Err != nil {
		resp.Error = "trip could not be saved"
	}
	c.JSON(http.StatusOK, resp)
}

// CloseSession handles DELETE /api/chat/sessions/:id
func (h *Handlers) CloseSession(c *gin.Context) {
	principal := principalFrom(c)
	if err := h.chat.CloseSession(c.Request.Context(), principal.UserID, c.Param("id")); err != nil {
		h.writeError(c, "Failed to close session", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListTrips handles GET /api/trips
func (h *Handlers) ListTrips(c *gin.Context) {
	var req TripListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	trips, err := h.dashboard.ListTrips(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.writeError(c, "Failed to list trips", err)
		return
	}
	if trips == nil {
		trips = []*entity.Trip{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: trips})
}

// AdminSummary handles GET /api/admin/summary
func (h *Handlers) AdminSummary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	summary, err := h.dashboard.AdminSummary(c.Request.Context(), principalFrom(c), filter, req.Year)
	if err != nil {
		h.writeError(c, "Failed to build summary", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// ExportTrips handles GET /api/admin/trips/export
func (h *Handlers) ExportTrips(c *gin.Context) {
	var req TripListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	principal := principalFrom(c)
	if !principal.IsAdmin() {
		h.writeError(c, "Export refused", service.ErrForbidden)
		return
	}

	contentType, ext := h.dashboard.ExportFormat()
	filename := fmt.Sprintf("viagens-%s%s", h.now().Format("20060102"), ext)

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.dashboard.ExportTrips(c.Request.Context(), principal, filter, c.Writer); err != nil {
		h.logger.Error("Failed to export trips", "error", err)
		if !c.Writer.Written() {
			h.writeError(c, "Failed to export trips", err)
		}
		return
	}
	c.Status(http.StatusOK)
}

func (r TripListRequest) toFilter() (entity.TripFilter, error) {
	filter := entity.TripFilter{
		UserID:     r.UserID,
		TripType:   r.TripType,
		CostCenter: r.CostCenter,
		Limit:      r.Limit,
	}
	if r.From != "" {
		d, err := entity.ParseCanonicalDate(r.From)
		if err != nil {
			return filter, fmt.Errorf("invalid from date")
		}
		filter.From = &d
	}
	if r.To != "" {
		d, err := entity.ParseCanonicalDate(r.To)
		if err != nil {
			return filter, fmt.Errorf("invalid to date")
		}
		filter.To = &d
	}
	return filter, nil
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error("Invalid request", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// writeError maps service errors to HTTP statuses
func (h *Handlers) writeError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	text := "internal error"
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status, text = http.StatusNotFound, "session not found"
	case errors.Is(err, service.ErrSessionBusy):
		status, text = http.StatusConflict, "previous message is still being processed"
	case errors.Is(err, service.ErrForbidden):
		status, text = http.StatusForbidden, "admin role required"
	case errors.Is(err, service.ErrInvalidFilter):
		status, text = http.StatusBadRequest, "invalid date range"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(msg, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, Response{Success: false, Error: text})
}
