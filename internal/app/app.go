package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Maulik-008/clock-software-sub000/internal/config"
	"github.com/Maulik-008/clock-software-sub000/internal/database"
	"github.com/Maulik-008/clock-software-sub000/internal/middleware"
	"github.com/Maulik-008/clock-software-sub000/internal/modules/offline"
	pkgcron "github.com/Maulik-008/clock-software-sub000/internal/pkg/cron"
	"github.com/Maulik-008/clock-software-sub000/internal/pkg/jwt"
	pkgredis "github.com/Maulik-008/clock-software-sub000/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	gateway *offline.Router
	logger  *zap.Logger
	cancel  context.CancelFunc
	sched   *pkgcron.Scheduler
}

// New initializes the application: config → DB → Redis → gateway → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	jwt.SetSecret(cfg.JWTSecret)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	gateway, err := offline.NewRouter(rc, cfg.Origin, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("offline gateway: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()
	sched.Register(pkgcron.Job{
		Name:        "precache-revalidate",
		Description: "refresh the static cache generation from the origin",
		Interval:    cfg.Cache.RevalidateEvery,
		Fn:          gateway.Install,
	})
	sched.Start(ctx)

	app := &App{
		cfg:     cfg,
		router:  router,
		db:      db,
		gateway: gateway,
		logger:  logger,
		cancel:  cancel,
		sched:   sched,
	}
	app.registerRoutes()

	return app, nil
}

// WarmUp runs the install/activate lifecycle once for the deployed version:
// precache the static generation, then retire generations of older versions.
// Like its service-worker counterpart, the gateway takes over immediately.
func (a *App) WarmUp(ctx context.Context) error {
	if err := a.gateway.Install(ctx); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	if err := a.gateway.Activate(ctx); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "x-ct-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOrigins = cfg.AllowedOrigins
	} else {
		c.AllowOriginFunc = func(origin string) bool { return true }
	}
	return c
}
