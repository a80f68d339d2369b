package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sayevvv/LearnUp-sub001/internal/data/db"
	apphttp "github.com/sayevvv/LearnUp-sub001/internal/http"
	httpH "github.com/sayevvv/LearnUp-sub001/internal/http/handlers"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services

	server       *apphttp.Server
	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := httpH.RegisterValidators(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("register validators: %w", err)
	}

	bootCtx := context.Background()
	tracing := cfg.Tracing
	tracing.ServiceName, tracing.Environment, tracing.Version = cfg.ServiceName, cfg.Environment, cfg.Version
	otelShutdown, err := observability.InitOTel(bootCtx, log, tracing)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}
	metrics := observability.Init(log)

	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	clients, err := wireClients(bootCtx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, metrics, reposet, clients)
	if err != nil {
		clients.Close(bootCtx)
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(theDB, log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start seeds and loads the topic catalog and starts the invalidation listener.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := seedCatalog(ctx, a.Log, a.Cfg, a.Services); err != nil {
		return err
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server listening", "addr", a.Cfg.Addr)
	return a.server.Run(a.Cfg.Addr)
}

// Shutdown drains in-flight requests; Close releases everything else.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()
	a.Clients.Close(ctx)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
