package api

import (
	"Mosaic/internal/api/middleware"
	"Mosaic/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, corsOrigins []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware(corsOrigins))
	logger.SetupGin(r)

	if group.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(group.MetricsHandler))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("", group.PostHandler.ListPosts)
			postGroup.GET("/:post_id", group.PostHandler.GetFullPost)
			postGroup.GET("/document/:document_id", group.PostHandler.GetPostByDocument)
			postGroup.PUT("/document/:document_id/media/:entry_id", group.PostHandler.UpdateEntryURL)
			postGroup.PUT("/document/:document_id/post-id", group.PostHandler.AttachPostID)
			postGroup.DELETE("/document/:document_id", group.PostHandler.DeletePost)
		}

		profileGroup := apiGroup.Group("/profiles")
		{
			profileGroup.GET("/id/:user_id", group.ProfileHandler.GetProfileByID)
			profileGroup.GET("/name/:user_name", group.ProfileHandler.GetProfileByName)
			profileGroup.DELETE("/:user_id/cache", group.ProfileHandler.InvalidateProfile)
		}

		suggestionGroup := apiGroup.Group("/suggestions")
		{
			suggestionGroup.GET("", group.SuggestionHandler.GetSuggestions)
			suggestionGroup.DELETE("/cache", group.SuggestionHandler.FlushSuggestions)
		}

		tokenGroup := apiGroup.Group("/tokens")
		{
			tokenGroup.POST("/confirmation", group.TokenHandler.UpsertConfirmationToken)
			tokenGroup.POST("/forgot", group.TokenHandler.UpsertForgotToken)
		}
	}

	return r
}
