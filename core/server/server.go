package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"meetsync/core/cache"
	"meetsync/core/config"
	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/core/middleware"
	"meetsync/core/queue"
	"meetsync/core/storage"
	"meetsync/modules/calendar"
	"meetsync/modules/company"
	"meetsync/modules/contacts"
	"meetsync/modules/grant"
	"meetsync/modules/mailer"
	"meetsync/modules/meeting"
	"meetsync/modules/notification"
)

// Run boots every subsystem, wires the modules in dependency order and
// serves until interrupted.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheService := cache.NewService(redisClient)

	queueClient := queue.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer queueClient.Close()
	worker := queue.NewWorker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var store *storage.ObjectStore
	if cfg.S3.Bucket != "" {
		store = storage.NewObjectStore(storage.S3Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
		})
	} else {
		logger.Warn("S3 bucket not configured; invites go out without ICS links")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// The company service doubles as the API-key verifier, so it is built
	// before the middleware every other module registers behind.
	companyService := company.NewService(db, cacheService)
	mw := middleware.New(cfg.JWT.Secret, companyService)

	company.Init(e, companyService, mw)
	grantService := grant.Init(e, db, mw)
	calendarService := calendar.Init(e, grantService, cacheService, mw)
	contactsService := contacts.Init(e, grantService, cacheService, mw)
	mailerService := mailer.Init(grantService, companyService, store, worker)
	notificationService := notification.Init(e, &db, mw)
	meeting.Init(e, &db, grantService, calendarService, contactsService, mailerService, notificationService, queueClient, mw)

	worker.Start()
	defer worker.Shutdown()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start", "error", err)
		}
	}()
	logger.Info("Server started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
