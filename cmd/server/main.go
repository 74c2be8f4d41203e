package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/app"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/buffer"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	boardUC "github.com/fastygo/taskboard/usecase/board"
	notificationUC "github.com/fastygo/taskboard/usecase/notification"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	stores, err := app.OpenStores(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	manager.RegisterCloser(stores.Driver, stores.Close)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient.Close)

	locales, err := locale.Load(cfg.Board.DefaultLanguage)
	if err != nil {
		zapLogger.Fatal("failed to load translations", zap.Error(err))
	}
	location := cfg.Board.Location()

	taskRepo := stores.CachedTasks(redisClient, cfg.Redis.TaskCacheTTL)
	userRepo := stores.Users
	columnRepo := stores.Columns
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.TokenTTL)
	notificationRepo := redisRepo.NewNotificationRepository(redisClient)

	checks := map[string]monitor.Check{
		stores.Driver: stores.Check,
		"redis":       redisInfra.Ping(redisClient),
	}

	var (
		opBuffer usecase.OperationBuffer
		sizer    monitor.BufferSizer
	)
	var bufferStore *buffer.Store
	if cfg.Buffer.Enabled {
		bufferStore, err = buffer.Open(cfg.Buffer.Path, buffer.Options{MaxSize: cfg.Buffer.MaxSize})
		if err != nil {
			zapLogger.Fatal("failed to open buffer store", zap.Error(err))
		}
		manager.RegisterCloser("buffer", bufferStore.Close)
		sizer = bufferStore
	}

	mon := monitor.New(checks, sizer, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if bufferStore != nil {
		bufferProcessor := services.NewBufferProcessor(
			bufferStore,
			mon,
			userRepo,
			taskRepo,
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  50,
				MaxRetries: cfg.Buffer.MaxRetry,
				Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
			},
		)
		bufferProcessor.Start()
		manager.Register("buffer_processor", bufferProcessor.Stop)
		opBuffer = services.NewBufferBridge(bufferProcessor)
	}

	sweeper := services.NewDeadlineSweeper(
		taskRepo,
		userRepo,
		notificationRepo,
		locales,
		zapLogger,
		services.SweeperConfig{
			Interval:        cfg.Board.SweepInterval,
			NotificationTTL: cfg.Board.NotificationTTL,
			Location:        location,
		},
	)
	sweeper.Start()
	manager.Register("deadline_sweeper", sweeper.Stop)

	authUseCase := authUC.New(userRepo, sessionRepo, columnRepo, authUC.Config{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		TokenTTL:        cfg.JWT.TokenTTL,
		DefaultLanguage: cfg.Board.DefaultLanguage,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, opBuffer, zapLogger)
	taskUseCase := taskUC.New(taskRepo, opBuffer, locales, location, zapLogger)
	boardUseCase := boardUC.New(taskRepo, columnRepo, opBuffer, cfg.Board.DragSessionTTL, zapLogger)
	notificationUseCase := notificationUC.New(notificationRepo, zapLogger)

	dispatcher := usecase.NewDispatcher()
	boardUseCase.Register(dispatcher)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, locales, location, ctxAdapter, zapLogger),
		Board:        apiHandler.NewBoardHandler(dispatcher, boardUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notificationUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", stores.Driver),
			zap.Bool("buffer", cfg.Buffer.Enabled),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
