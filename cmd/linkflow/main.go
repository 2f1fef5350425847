package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/linkflow/linkflow/internal/api"
	"github.com/linkflow/linkflow/internal/auth"
	"github.com/linkflow/linkflow/internal/client"
	"github.com/linkflow/linkflow/internal/config"
	"github.com/linkflow/linkflow/internal/janitor"
	"github.com/linkflow/linkflow/internal/ratelimit"
	"github.com/linkflow/linkflow/internal/repo"
	"github.com/linkflow/linkflow/internal/service"
	"github.com/linkflow/linkflow/internal/session"
)

const limiterIdle = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("linkflow stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := repo.Open(ctx, cfg.Database.PostgresURL, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("schema migrated")
	}

	var (
		store    session.Store
		memStore *session.MemoryStore
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		store = session.NewRedisStore(rdb)
	} else {
		memStore = session.NewMemoryStore()
		store = memStore
	}

	groups := repo.NewPostgresGroupRepo(db)
	numbers := repo.NewPostgresNumberRepo(db)
	clicks := repo.NewPostgresClickRepo(db)

	var selector service.NumberSelector = numbers
	if cfg.Selector.RPCURL != "" {
		selector = client.NewRPCClient(cfg.Selector.RPCURL, cfg.Selector.RPCAPIKey)
	}

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	tasks := []janitor.Task{{
		Name: "rate_limiter",
		Fn:   func(ctx context.Context) int { return limiter.Sweep(ctx, limiterIdle) },
	}}
	if memStore != nil {
		tasks = append(tasks, janitor.Task{Name: "sessions", Fn: memStore.Sweep})
	}
	jan, err := janitor.New(cfg.Janitor.Interval, tasks...)
	if err != nil {
		return err
	}

	h := api.NewHandler(api.Deps{
		Groups:        groups,
		Numbers:       numbers,
		Clicks:        clicks,
		Selector:      selector,
		Redirector:    service.NewRedirector(selector, clicks, cfg.Redirect.DefaultMessage),
		Simulator:     service.NewSimulator(selector, clicks, cfg.Redirect.DefaultMessage),
		Stats:         service.NewStats(repo.NewPostgresStatsRepo(db), groups),
		Auth:          auth.New(store, cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash, cfg.Auth.SessionTTL, cfg.Auth.CookieSecure),
		Limiter:       limiter,
		DB:            db,
		Janitor:       jan,
		PublicBaseURL: cfg.Server.PublicBaseURL,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           loggingMiddleware(api.Router(h)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	jan.Start()
	defer jan.Stop()

	slog.Info("linkflow starting",
		"addr", cfg.Server.Address,
		"public_base_url", cfg.Server.PublicBaseURL,
		"redis", cfg.Redis.Enabled,
		"rpc_selector", cfg.Selector.RPCURL != "",
		"rate_limit", limiter.Enabled(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
