package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/codementor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/codementor-backend/internal/http/middleware"
	"github.com/yungbote/codementor-backend/internal/observability"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

type RouterConfig struct {
	AIHandler          *httpH.AIHandler
	PersonalityHandler *httpH.PersonalityHandler
	HealthHandler      *httpH.HealthHandler

	Metrics         *observability.Metrics
	Log             *logger.Logger
	ServiceName     string
	AllowedOrigins  []string
	MaxRequestBytes int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "codementor"
	}
	httpH.RegisterValidation()

	r := gin.New()
	r.Use(httpMW.Recovery(log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(httpMW.LimitBody(cfg.MaxRequestBytes))
	{
		if cfg.AIHandler != nil {
			api.POST("/ai/code-feedback", cfg.AIHandler.CodeFeedback)
			api.POST("/ai/generate-hint", cfg.AIHandler.GenerateHint)
			api.POST("/ai/chat", cfg.AIHandler.Chat)
			api.GET("/ai/providers", cfg.AIHandler.ListProviders)
			api.GET("/search-videos", cfg.AIHandler.SearchVideos)

			// Legacy chatbot path, same contract as /ai/chat.
			api.POST("/chatbot/message", cfg.AIHandler.Chat)
		}

		if cfg.PersonalityHandler != nil {
			api.GET("/mentor/personalities", cfg.PersonalityHandler.ListPersonalities)
		}
	}

	return r
}
