package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartqueue/backend/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

type authHandler struct {
	tokens tokenManager
	log    *slog.Logger
}

func (h *authHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/auth/login", h.login)
}

func (h *authHandler) login(c *gin.Context) {
	if h.tokens == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: auth.ErrLoginDisabled.Error()})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username and password are required"})
		return
	}

	if err := h.tokens.Authenticate(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrLoginDisabled):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.log.Warn("staff login rejected", slog.String("username", req.Username))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		default:
			h.log.Error("staff login failed", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		return
	}

	tok, err := h.tokens.Issue(req.Username, auth.RoleEmployee)
	if err != nil {
		h.log.Error("issue token", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt, TokenType: tok.TokenType})
}
