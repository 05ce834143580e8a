package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartqueue/backend/internal/notify"
)

type ServeResponse struct {
	Message     string              `json:"message"`
	Appointment AppointmentResponse `json:"appointment"`
}

type staffHandler struct {
	svc      queueService
	notifier notify.Publisher
	log      *slog.Logger
}

func (h *staffHandler) RegisterRoutes(r gin.IRouter, mw ...gin.HandlerFunc) {
	g := r.Group("/api/employee", mw...)
	g.GET("/full-queue", h.fullQueue)
	g.DELETE("/serve", h.serve)
	g.POST("/duration", h.setDuration)
	g.POST("/hours", h.setHours)
}

func (h *staffHandler) fullQueue(c *gin.Context) {
	all := h.svc.ListAll()
	out := make([]AppointmentResponse, 0, len(all))
	for _, a := range all {
		out = append(out, appointmentResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *staffHandler) serve(c *gin.Context) {
	appt, err := h.svc.ServeNext(c.Request.Context())
	if err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	if h.notifier != nil {
		notify.AnnounceTurn(c.Request.Context(), h.notifier, appt.ID, appt.CustomerName)
	}
	h.log.Info("served",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("staff", c.GetString(ctxStaffSubject)),
	)
	c.JSON(http.StatusOK, ServeResponse{
		Message:     "Now Serving: " + appt.CustomerName,
		Appointment: appointmentResponse(appt),
	})
}

func (h *staffHandler) setDuration(c *gin.Context) {
	minutes, err := strconv.Atoi(c.Query("minutes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "minutes must be an integer"})
		return
	}
	if err := h.svc.SetDuration(c.Request.Context(), minutes); err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Duration updated: %d minutes", minutes)})
}

func (h *staffHandler) setHours(c *gin.Context) {
	openHour, err := strconv.Atoi(c.Query("openHour"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "openHour must be an integer"})
		return
	}
	closeHour, err := strconv.Atoi(c.Query("closeHour"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "closeHour must be an integer"})
		return
	}
	if err := h.svc.SetHours(c.Request.Context(), openHour, closeHour); err != nil {
		respondQueueError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Hours updated: %d:00 to %d:00", openHour, closeHour)})
}
