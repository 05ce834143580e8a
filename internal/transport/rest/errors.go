package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartqueue/backend/internal/service/queue"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

const (
	msgNotFound   = "No matching appointment found."
	msgQueueEmpty = "No customers in the queue."
)

func respondQueueError(c *gin.Context, log *slog.Logger, err error) {
	var vErr *queue.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: vErr.Error(), Reason: string(vErr.Reason)})
		return
	}

	switch {
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
	case errors.Is(err, queue.ErrQueueEmpty):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgQueueEmpty})
	case errors.Is(err, queue.ErrInvalidHours), errors.Is(err, queue.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, queue.ErrStoreUnavailable):
		log.Error("store unavailable", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable, try again"})
	default:
		log.Error("unexpected error", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
