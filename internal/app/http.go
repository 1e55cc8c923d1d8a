package app

import (
	"github.com/yungbote/codementor-backend/internal/config"
	"github.com/yungbote/codementor-backend/internal/dispatch"
	httpserver "github.com/yungbote/codementor-backend/internal/http"
	httpH "github.com/yungbote/codementor-backend/internal/http/handlers"
	"github.com/yungbote/codementor-backend/internal/observability"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

func wireServer(cfg *config.Config, d *dispatch.Dispatcher, metrics *observability.Metrics, log *logger.Logger) *httpserver.Server {
	log.Info("Wiring handlers...")
	return httpserver.NewServer(
		httpserver.ServerConfig{
			Addr:              cfg.HTTP.Addr,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		},
		httpserver.RouterConfig{
			AIHandler:          httpH.NewAIHandler(d, log),
			PersonalityHandler: httpH.NewPersonalityHandler(),
			HealthHandler:      httpH.NewHealthHandler(),
			Metrics:            metrics,
			Log:                log,
			ServiceName:        cfg.Telemetry.ServiceName,
			AllowedOrigins:     cfg.HTTP.AllowedOrigins,
			MaxRequestBytes:    cfg.HTTP.MaxRequestBytes,
		},
	)
}
