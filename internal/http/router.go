package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/maintlog/backend/internal/assistant"
	"github.com/maintlog/backend/internal/config"
	"github.com/maintlog/backend/internal/http/handlers"
	"github.com/maintlog/backend/internal/http/middleware"

	_ "github.com/maintlog/backend/docs"
)

func Router(cfg config.Config, asst *assistant.Assistant, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Assistant:     asst,
		History:       handlers.NewHistoryStore(cfg.HistoryLimit),
		Validator:     validator.New(),
		Logger:        logger,
		AdminKey:      cfg.AdminKey,
		QuestionsPath: cfg.QuestionsPath,
		ResultsDir:    cfg.ResultsDir,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/export.txt", h.ExportTxt)

	api := r.Group("/api")
	{
		api.POST("/ask", h.Ask)
		api.GET("/history", h.HistoryList)
		api.POST("/history/clear", h.HistoryClear)
		api.POST("/search", h.Search)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/eval/run", h.EvalRun)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
