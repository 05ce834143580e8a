package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyCheckTimeout = 2 * time.Second

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthHandler struct {
	checks []ReadyCheck
}

func (h *healthHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *healthHandler) ready(c *gin.Context) {
	failures := map[string]string{}
	for _, rc := range h.checks {
		if rc.Check == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
		err := rc.Check(ctx)
		cancel()
		if err != nil {
			failures[rc.Name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failures": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
