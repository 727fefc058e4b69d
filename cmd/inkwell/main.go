package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/inkwell-cms/inkwell/internal/app"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/categories"
	"github.com/inkwell-cms/inkwell/internal/comments"
	"github.com/inkwell-cms/inkwell/internal/media"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/platform/cache"
	"github.com/inkwell-cms/inkwell/internal/platform/db"
	"github.com/inkwell-cms/inkwell/internal/posts"
	"github.com/inkwell-cms/inkwell/internal/stats"
	"github.com/inkwell-cms/inkwell/internal/users"
	"github.com/inkwell-cms/inkwell/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	denylist := auth.NewDenylist(redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, denylist, logger)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, jobClient, logger)
	usersHandler := users.NewHandler(logger, usersService)

	treeCache := categories.NewTreeCache(redisClient, cfg.TreeCacheTTL)
	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo, treeCache, logger)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	postsRepo := posts.NewRepository(pool)
	postsService := posts.NewService(postsRepo)
	postsHandler := posts.NewHandler(logger, postsService)

	commentsRepo := comments.NewRepository(pool)
	commentsService := comments.NewService(commentsRepo, postsRepo, logger)
	commentsHandler := comments.NewHandler(logger, commentsService)

	storage, err := media.NewStorage(cfg.UploadDir)
	if err != nil {
		logger.Error("init upload storage", slog.Any("error", err))
		os.Exit(1)
	}
	mediaHandler := media.NewHandler(logger, storage)

	statsService := stats.NewService(pool, logger)
	statsHandler := stats.NewHandler(logger, statsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	authzMiddleware := authz.Middleware{
		Resolver: app.OwnershipResolver{Posts: postsRepo, Comments: commentsRepo},
		Logger:   logger,
		Metrics:  metrics,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		Authz:             authzMiddleware,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		CategoriesHandler: categoriesHandler,
		PostsHandler:      postsHandler,
		CommentsHandler:   commentsHandler,
		MediaHandler:      mediaHandler,
		StatsHandler:      statsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
