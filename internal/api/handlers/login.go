package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ejci/tado-data-capture/internal/tado"
)

// AuthSession is the slice of the tado client the login flow needs
type AuthSession interface {
	StartDeviceAuthorization(ctx context.Context) (*tado.DeviceAuthorization, error)
	PollForToken(ctx context.Context, deviceCode string) (*tado.TokenSet, error)
}

// LoginHandler drives the device flow login helper
type LoginHandler struct {
	session AuthSession
	logger  *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(session AuthSession, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginHandler{
		session: session,
		logger:  logger,
	}
}

// StartLogin initiates the device authorization flow
// POST /api/login/start
func (h *LoginHandler) StartLogin(c *gin.Context) {
	auth, err := h.session.StartDeviceAuthorization(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to start device authorization",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, auth)
}

// PollLogin exchanges a device code for tokens once the user has approved
// GET /api/login/poll?code=<device_code>
func (h *LoginHandler) PollLogin(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	tokens, err := h.session.PollForToken(c.Request.Context(), code)
	if errors.Is(err, tado.ErrAuthorizationPending) {
		// Not a failure, the user just has not approved yet.
		c.JSON(http.StatusOK, gin.H{"error": "authorization_pending"})
		return
	}
	if err != nil {
		h.logger.Error("Device code exchange failed",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Login completed, session authenticated", "component", "api")
	c.JSON(http.StatusOK, tokens)
}
