package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/lifelog/backend/internal/auth"
	"example.com/lifelog/backend/internal/config"
	"example.com/lifelog/backend/internal/handlers"
	"example.com/lifelog/backend/internal/notifications"
	"example.com/lifelog/backend/internal/repository"
	"example.com/lifelog/backend/internal/telemetry"
	"example.com/lifelog/backend/internal/tracker"
)

// Services are the tracker services shared by the HTTP server and lifelogctl.
type Services struct {
	Daily    *tracker.DailyLogService
	Weekly   *tracker.WeeklyLogService
	Learning *tracker.LearningService
}

// NewServices собирает сервисы поверх репозиториев Postgres.
func NewServices(cfg config.Config, db *pgxpool.Pool, events notifications.Publisher, recorder *telemetry.Recorder) Services {
	dailyRepo := repository.NewDailyLogRepository(db)
	weeklyRepo := repository.NewWeeklyLogRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	learningRepo := repository.NewLearningRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	return Services{
		Daily:    tracker.NewDailyLogService(dailyRepo, todoRepo, learningRepo, events, recorder),
		Weekly:   tracker.NewWeeklyLogService(weeklyRepo, dailyRepo, todoRepo, financeRepo, cfg.Metrics.Targets, events, recorder),
		Learning: tracker.NewLearningService(learningRepo, events, recorder),
	}
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	var recorder *telemetry.Recorder
	if cfg.Metrics.Enabled {
		recorder = telemetry.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger, recorder))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()
	services := NewServices(cfg, db, notificationHub, recorder)

	h := routeHandlers{
		auth:          handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager, auth.NewPasswordHasher(cfg.Auth.BcryptCost)),
		dailyLogs:     handlers.NewDailyLogHandler(services.Daily),
		weeklyLogs:    handlers.NewWeeklyLogHandler(services.Weekly),
		todos:         handlers.NewTodoHandler(todoRepo),
		learning:      handlers.NewLearningHandler(services.Learning),
		finance:       handlers.NewFinanceHandler(financeRepo),
		stats:         handlers.NewStatsHandler(statsRepo),
		exports:       handlers.NewExportHandler(financeRepo, todoRepo, services.Weekly),
		notifications: handlers.NewNotificationHandler(notificationHub, cfg.Notify.Heartbeat),
		admin:         handlers.NewAdminHandler(adminRepo),
	}

	mw := routeMiddleware{
		auth:        auth.JWTMiddleware(tokenManager),
		stream:      auth.StreamJWTMiddleware(tokenManager),
		admin:       handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		authLimiter: authRateLimiter(cfg.Auth),
	}

	registerRoutes(e, h, mw, db)

	if recorder != nil {
		e.GET("/metrics", echo.WrapHandler(recorder.Handler()))
	}

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger, recorder *telemetry.Recorder) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			recorder.ObserveRequest(v.Method, v.RoutePath, v.Status, v.Latency)

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
