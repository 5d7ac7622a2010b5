// Command server is the chat backend: it stores conversations and asks the
// configured model provider for replies.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/suPer8Hu/bundle-chat/internal/ai"
	"github.com/suPer8Hu/bundle-chat/internal/config"
	"github.com/suPer8Hu/bundle-chat/internal/db"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi/handlers"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi/middleware"
	"github.com/suPer8Hu/bundle-chat/internal/logging"
	"github.com/suPer8Hu/bundle-chat/internal/store/redisstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	reg := newRegistry(cfg)
	if _, ok := reg.Lookup(cfg.AIProvider); !ok {
		log.Fatal("unsupported AI_PROVIDER", zap.String("provider", cfg.AIProvider))
	}

	var limiter middleware.Limiter
	if cfg.RateLimitPerMinute > 0 {
		if cfg.RedisAddr != "" {
			rs, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				log.Fatal("redis connect", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			defer rs.Close()
			limiter = rs.RateLimiter(cfg.RateLimitPerMinute, time.Minute)
		} else {
			limiter = middleware.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)
		}
	}

	h := handlers.NewHandler(gdb, cfg, reg, log)
	server := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     httpapi.NewRouter(h, limiter, log),
		ReadTimeout: 15 * time.Second,
		// model replies can take a while
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started",
			zap.String("addr", cfg.ServerAddr),
			zap.String("provider", cfg.AIProvider),
			zap.String("db", cfg.DBDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("echo", "Repeats the last user message, for local testing", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		_ = model
		return ai.NewEchoProvider(), nil
	})

	reg.Register("ollama", "Local models served by Ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	reg.Register("openrouter", "Hosted models through OpenRouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	return reg
}
