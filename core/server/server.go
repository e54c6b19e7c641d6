package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"book-my-session/core/cache"
	"book-my-session/core/config"
	"book-my-session/core/constants"
	"book-my-session/core/database"
	"book-my-session/core/logger"
	"book-my-session/core/metrics"
	"book-my-session/core/middleware"
	"book-my-session/modules/auth"
	"book-my-session/modules/booking"
	bookingRepository "book-my-session/modules/booking/repository"
	bookingService "book-my-session/modules/booking/service"
	"book-my-session/modules/calendar"
	"book-my-session/modules/notification"
	"book-my-session/modules/notification/tasks"
	"book-my-session/modules/slot"
	"book-my-session/modules/speaker"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type worker struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	inspector *asynq.Inspector
}

func (w *worker) shutdown() {
	if w == nil {
		return
	}
	w.scheduler.Shutdown()
	w.server.Shutdown()
	if err := w.client.Close(); err != nil {
		logger.Warn("Server:Worker:CloseClient:Error", "error", err)
	}
	if err := w.inspector.Close(); err != nil {
		logger.Warn("Server:Worker:CloseInspector:Error", "error", err)
	}
}

// Run loads configuration, wires every module and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load(os.Getenv("BMS_CONFIG_FILE"))
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.InitDB(database.DatabaseConfig{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.SQLx().DB, cfg.Database.Driver); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tokenCache cache.Cache
	if cfg.Redis.Enabled {
		tokenCache, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// token revocation is unavailable, authentication still works
			logger.Warn("Server:Redis:Unavailable", "error", err)
			tokenCache = nil
		} else {
			defer tokenCache.Close()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(metrics.HTTPMiddleware())

	e.GET("/health", healthHandler(db, tokenCache))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := middleware.NewMiddleware(cfg.JWT.Secret, tokenCache)
	auth.Init(e, mw, tokenCache)

	generator, err := slot.NewGenerationService(db, cfg)
	if err != nil {
		return fmt.Errorf("slot generator: %w", err)
	}
	speakers := speaker.Init(e, db, mw, generator)
	slot.Init(e, db, mw, speakers, cfg)

	bridge := calendar.Init(e, db, mw, cfg)
	notifications := notification.Init(e, db, mw, bridge, cfg)

	var notifier bookingService.Notifier = tasks.NewInlineNotifier(notifications.Dispatcher)
	var bg *worker
	if cfg.Worker.Enabled {
		if !cfg.Redis.Enabled {
			logger.Warn("Server:Worker:RedisDisabled", "fallback", "inline")
		} else {
			bg, err = startWorker(cfg, bookingRepository.NewBookingRepository(db), notifications)
			if err != nil {
				return err
			}
			notifier = tasks.NewEnqueuer(bg.client, cfg.Worker.MaxRetry)
		}
	}
	defer bg.shutdown()

	booking.Init(e, db, mw, speakers, notifier, cfg)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", addr, "policy", cfg.Booking.Policy, "view", cfg.Booking.AvailabilityView)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Server:Shutdown:Start")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Shutdown:Error", "error", err)
	}
	logger.Info("Server:Shutdown:Done")
	return nil
}

func startWorker(cfg *config.Config, bookings bookingRepository.BookingRepository, notifications *notification.Module) (*worker, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)
	inspector := asynq.NewInspector(redisOpt)
	enqueuer := tasks.NewEnqueuer(client, cfg.Worker.MaxRetry).WithInspector(inspector)
	closeClients := func() {
		client.Close()
		inspector.Close()
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues:      map[string]int{constants.QueueNotifications: 1},
	})
	sweeper := tasks.NewSweeper(bookings, enqueuer, cfg.Worker.SweepInterval)
	mux := tasks.NewServeMux(tasks.NewHandler(notifications.Dispatcher), sweeper)
	if err := srv.Start(mux); err != nil {
		closeClients()
		return nil, fmt.Errorf("start worker: %w", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	schedule := fmt.Sprintf("@every %s", cfg.Worker.SweepInterval)
	if _, err := scheduler.Register(schedule, tasks.NewSweepTask()); err != nil {
		srv.Shutdown()
		closeClients()
		return nil, fmt.Errorf("register sweep: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		closeClients()
		return nil, fmt.Errorf("start scheduler: %w", err)
	}

	logger.Info("Server:Worker:Started", "concurrency", cfg.Worker.Concurrency, "sweep", schedule)
	return &worker{client: client, server: srv, scheduler: scheduler, inspector: inspector}, nil
}
