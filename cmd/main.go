package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/fintrack/internal/auth"
	"github.com/tinoosan/fintrack/internal/cache"
	"github.com/tinoosan/fintrack/internal/config"
	"github.com/tinoosan/fintrack/internal/httpapi"
	"github.com/tinoosan/fintrack/internal/sanitize"
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/category"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/service/summary"
	"github.com/tinoosan/fintrack/internal/service/transaction"
	"github.com/tinoosan/fintrack/internal/service/user"
	"github.com/tinoosan/fintrack/internal/storage/memory"
	pgstore "github.com/tinoosan/fintrack/internal/storage/postgres"
)

// store is everything the services need from a storage backend.
type store interface {
	transaction.Repo
	transaction.Writer
	transaction.UnitOfWork
	account.Repo
	account.Writer
	category.Repo
	category.Writer
	currency.Repo
	currency.Writer
	user.Repo
	user.Writer
	summary.Repo
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	var (
		backend store
		ready   []httpapi.ReadyChecker
	)
	if cfg.DatabaseURL != "" {
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pg.Close()
		backend = pg
		ready = append(ready, pg)
		logger.Info("storage backend: postgres")
	} else {
		backend = memory.New()
		logger.Info("storage backend: memory")
	}

	var summaryCache summary.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		c := cache.NewSummaries(rdb, cfg.SummaryCacheTTL, logger)
		summaryCache = c
		ready = append(ready, c)
		logger.Info("summary cache: redis", "addr", cfg.RedisAddr, "ttl", cfg.SummaryCacheTTL.String())
	}

	tokens, err := auth.New(auth.Options{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	if err != nil {
		return err
	}

	words := append(append([]string{}, sanitize.DefaultWords...), cfg.SanitizeExtraWords...)
	svc := httpapi.Services{
		Users:        user.New(backend, backend, tokens, cfg.BcryptCost),
		Accounts:     account.New(backend, backend),
		Categories:   category.New(backend, backend),
		Currencies:   currency.New(backend, backend),
		Transactions: transaction.New(backend, backend, backend, sanitize.New(words)),
		Summaries:    summary.New(backend, summaryCache, cfg.Location()),
	}

	if cfg.DevSeed {
		seed, err := seedDev(ctx, svc)
		if err != nil {
			logger.Error("dev seed failed", "err", err)
		} else {
			logDevSeed(logger, seed)
			printDevSeedBanner(seed)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(svc, tokens, logger, ready...).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("fintrack listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func buildLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
