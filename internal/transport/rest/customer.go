package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/service/queue"
)

type AppointmentResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Date          string    `json:"date"`
	Hour          int       `json:"hour"`
	FormattedTime string    `json:"formattedTime"`
	CreatedAt     time.Time `json:"createdAt"`
}

func appointmentResponse(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID.String(),
		Name:          a.CustomerName,
		Date:          a.Date.String(),
		Hour:          a.Hour,
		FormattedTime: a.FormattedTime(),
		CreatedAt:     a.CreatedAt,
	}
}

type bookRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
	// A missing hour reads as 0 and fails validation in the usual order.
	Hour int `json:"hour"`
}

type cancelRequest struct {
	ID string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type WaitTimeResponse struct {
	Ahead   int    `json:"ahead"`
	Minutes int    `json:"minutes"`
	Message string `json:"message"`
}

type PositionResponse struct {
	Position int    `json:"position"`
	Message  string `json:"message"`
}

type HoursResponse struct {
	OpenHour            int `json:"openHour"`
	CloseHour           int `json:"closeHour"`
	SlotDurationMinutes int `json:"slotDurationMinutes"`
	QueueLength         int `json:"queueLength"`
}

type customerHandler struct {
	svc queueService
	log *slog.Logger
}

func (h *customerHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/customer")
	g.POST("/book", h.book)
	g.DELETE("/cancel", h.cancel)
	g.GET("/wait-time", h.waitTime)
	g.GET("/position", h.position)
	g.GET("/hours", h.hours)
}

func (h *customerHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	appt, err := h.svc.Reserve(c.Request.Context(), queue.ReserveInput{Name: req.Name, Date: req.Date, Hour: req.Hour})
	if err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointmentResponse(appt))
}

func (h *customerHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}
	raw := req.ID
	if raw == "" {
		raw = c.Query("id")
	}

	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Appointment successfully canceled."})
}

func (h *customerHandler) waitTime(c *gin.Context) {
	hour, err := strconv.Atoi(c.Query("hour"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "hour must be an integer"})
		return
	}
	est, err := h.svc.WaitEstimate(c.Query("date"), hour)
	if err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, WaitTimeResponse{
		Ahead:   est.Ahead,
		Minutes: est.Minutes,
		Message: fmt.Sprintf("Estimated Wait: %d minutes. %d people ahead of you.", est.Minutes, est.Ahead),
	})
}

func (h *customerHandler) position(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Query("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
		return
	}
	pos, err := h.svc.PositionOf(id)
	if err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, PositionResponse{Position: pos, Message: positionMessage(pos)})
}

func positionMessage(pos int) string {
	if pos == 0 {
		return "You are next!"
	}
	return fmt.Sprintf("There are %d people ahead of you.", pos)
}

func (h *customerHandler) hours(c *gin.Context) {
	p := h.svc.Policy()
	c.JSON(http.StatusOK, HoursResponse{
		OpenHour:            p.OpenHour,
		CloseHour:           p.CloseHour,
		SlotDurationMinutes: p.SlotDurationMinutes,
		QueueLength:         h.svc.Len(),
	})
}
