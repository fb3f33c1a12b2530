package api

import (
	"Mosaic/internal/api/handler"
	"net/http"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PostHandler       *handler.PostHandler
	ProfileHandler    *handler.ProfileHandler
	SuggestionHandler *handler.SuggestionHandler
	TokenHandler      *handler.TokenHandler
	MetricsHandler    http.Handler
}
