package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New returns a development logger in gin debug mode and a JSON production
// logger otherwise.
func New(ginMode string) (*zap.Logger, error) {
	if ginMode == gin.DebugMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
