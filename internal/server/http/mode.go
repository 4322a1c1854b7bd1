package http

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/tentech-me/tentech-api/internal/logging"
)

// ConfigureMode puts gin in release mode unless debug logging is on. An
// explicit GIN_MODE wins. Call it before NewServer.
func ConfigureMode(logLevel string) {
	if _, ok := os.LookupEnv(gin.EnvGinMode); ok {
		return
	}
	gin.SetMode(modeFor(logLevel))
}

func modeFor(logLevel string) string {
	if logging.ParseLevel(logLevel) == slog.LevelDebug {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
