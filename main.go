package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authordata/author-service/handlers"
	"github.com/authordata/author-service/internal/author/repository"
	"github.com/authordata/author-service/internal/author/service"
	"github.com/authordata/author-service/internal/config"
	"github.com/authordata/author-service/internal/database"
	"github.com/authordata/author-service/internal/server"
	"github.com/authordata/author-service/pkg/logger"
	"github.com/authordata/author-service/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var memory bool

	root := &cobra.Command{
		Use:           "author-service",
		Short:         "CRUD HTTP service for author documents stored in MongoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return run(cmd.Context(), cfg, memory)
		},
	}

	f := root.Flags()
	f.String("port", "", "listen port (SERVER_PORT)")
	f.String("host", "", "listen host (SERVER_HOST)")
	f.String("mongo-uri", "", "MongoDB connection string (MONGODB_URI)")
	f.String("db", "", "database name (MONGODB_DATABASE)")
	f.Int("page-size", 0, "documents per list page (AUTHOR_PAGE_SIZE)")
	f.String("error-mode", "", "error rendering: strict or legacy (AUTHOR_ERROR_MODE)")
	f.String("log-level", "", "debug|info|warn|error (LOG_LEVEL)")
	f.BoolVar(&memory, "memory", false, "use an in-process store instead of MongoDB")
	for flag, key := range map[string]string{
		"port":       "SERVER_PORT",
		"host":       "SERVER_HOST",
		"mongo-uri":  "MONGODB_URI",
		"db":         "MONGODB_DATABASE",
		"page-size":  "AUTHOR_PAGE_SIZE",
		"error-mode": "AUTHOR_ERROR_MODE",
		"log-level":  "LOG_LEVEL",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func run(parent context.Context, cfg *config.Config, memory bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ready := map[string]handlers.Pinger{}
	var store repository.Store
	if memory {
		logger.Warn("using in-memory store; data is lost on exit")
		mem := repository.NewMemoryRepo()
		store = mem
		ready["store"] = mem
	} else {
		// the listener only opens once the store is reachable
		handle, err := database.Connect(ctx, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := handle.Close(closeCtx); err != nil {
				logger.Warnf("disconnect from MongoDB: %v", err)
			}
		}()
		repo := repository.NewMongoRepo(handle.Collection(cfg.MongoDB.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("ensure indexes on %s: %v", cfg.MongoDB.Collection, err)
		}
		store = repo
		ready["mongodb"] = handle
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s:%s unreachable: %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		if cfg.RateLimit.UseRedis {
			ready["redis"] = redisPinger{rdb}
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	svc := service.New(store,
		service.WithPageSize(cfg.Author.PageSize),
		service.WithTimeout(cfg.Author.StoreTimeout),
	)
	router := server.NewRouter(cfg, server.Deps{Service: svc, Ready: ready, Redis: rdb})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("author service listening on %s (error mode %s, page size %d)", cfg.Addr(), cfg.Author.ErrorMode, cfg.Author.PageSize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }
