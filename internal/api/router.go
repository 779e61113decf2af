package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ejci/tado-data-capture/internal/api/handlers"
	"github.com/ejci/tado-data-capture/internal/api/middleware"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Session interface {
		handlers.AuthSession
		handlers.AuthStatus
	}
	Poller    handlers.PollerState
	Sink      handlers.SinkHealth
	Logger    *slog.Logger
	StaticDir string // optional login helper assets, served at /
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.Logging(config.Logger))

	loginHandler := handlers.NewLoginHandler(config.Session, config.Logger)
	router.POST("/api/login/start", loginHandler.StartLogin)
	router.GET("/api/login/poll", loginHandler.PollLogin)

	healthHandler := handlers.NewHealthHandler(config.Session, config.Poller, config.Sink)
	router.GET("/health", healthHandler.GetHealth)

	// The login helper page, when it has been built alongside the binary.
	if config.StaticDir != "" {
		if _, err := os.Stat(config.StaticDir); err == nil {
			router.NoRoute(gin.WrapH(http.FileServer(http.Dir(config.StaticDir))))
		}
	}

	return router
}
