package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/mesabot"
	"github.com/set-night/mesabot/internal/cache"
	"github.com/set-night/mesabot/internal/config"
	"github.com/set-night/mesabot/internal/dispatch"
	"github.com/set-night/mesabot/internal/fallback"
	"github.com/set-night/mesabot/internal/fuzzy"
	"github.com/set-night/mesabot/internal/handler"
	"github.com/set-night/mesabot/internal/intent"
	"github.com/set-night/mesabot/internal/llm"
	"github.com/set-night/mesabot/internal/llm/gemini"
	"github.com/set-night/mesabot/internal/llm/openai"
	"github.com/set-night/mesabot/internal/middleware"
	"github.com/set-night/mesabot/internal/repository"
	"github.com/set-night/mesabot/internal/server"
	"github.com/set-night/mesabot/internal/service"
	"github.com/set-night/mesabot/internal/session"
	"github.com/set-night/mesabot/internal/telegram"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped gracefully")
}

func run() error {
	// Setup structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.RunMigrations(cfg.DatabaseURL, mesabot.MigrationsFS, "migrations"); err != nil {
		return err
	}

	catalogRepo := repository.NewCatalogRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	// Product names are cached in redis when configured, in memory otherwise.
	var (
		names   cache.NameStore = cache.NewMemoryNames(cfg.ProductNamesTTL)
		limiter middleware.Limiter
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		names = cache.NewRedisNames(rdb, config.ProductNamesCacheKey, cfg.ProductNamesTTL)
		limiter = cache.NewRateLimiter(rdb, config.RateLimitKeyPrefix, cfg.RateLimitPerMinute)
		slog.Info("redis enabled")
	}
	catalogStore := cache.NewCachedCatalog(catalogRepo, names)

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	systemPrompt, err := loadRules(cfg.SystemRulesFile)
	if err != nil {
		return err
	}

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	middlewares := []bot.Middleware{middleware.Recover(fallback.ApologyText), middleware.Logging(), middleware.ChatInfo()}
	if limiter != nil {
		middlewares = append(middlewares, middleware.RateLimit(limiter))
	}
	b, err := bot.New(cfg.BotToken,
		bot.WithMiddlewares(middlewares...),
		bot.WithNotAsyncHandlers(),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.HandleText(ctx, b, update)
		}),
	)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	tgLogger := telegram.NewTelegramLogger(b, cfg)
	client := telegram.NewClient(b)
	sessions := session.NewStore()

	catalog := service.NewCatalogService(catalogStore)
	router, err := intent.NewRouter(intent.DefaultCatalog,
		fuzzy.NewResolver(catalogStore, cfg.FuzzyThreshold),
		catalog.Bindings(service.SmallTalkReply(cfg.BusinessName)))
	if err != nil {
		return fmt.Errorf("build intent router: %w", err)
	}

	escalator := fallback.NewEscalator(generator, sessions, fallback.Options{
		SystemPrompt:    systemPrompt,
		MaxOutputTokens: cfg.FallbackMaxTokens,
		Temperature:     cfg.FallbackTemperature,
		Timeout:         cfg.FallbackTimeout,
		Markers:         config.RecommendationMarkers,
	}, tgLogger)

	engine := service.NewEngine(service.EngineDeps{
		Sessions:       sessions,
		Router:         router,
		Escalator:      escalator,
		Catalog:        catalog,
		Feedback:       feedbackRepo,
		Deleter:        client,
		Notifier:       tgLogger,
		CatalogTimeout: cfg.CatalogTimeout,
		BotName:        cfg.BotName,
		BusinessName:   cfg.BusinessName,
	})

	dispatcher := dispatch.New(ctx, config.ChatMailboxSize, config.ChatMailboxIdle)
	defer dispatcher.Close()

	h = handler.New(handler.Deps{
		Bot:        b,
		Engine:     engine,
		Client:     client,
		Dispatcher: dispatcher,
	})
	h.Register()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting bot", "username", me.Username, "id", me.ID)
		b.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return server.Run(ctx, cfg.Port, server.NewRouter(cfg.BotName, pool))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, &http.Client{Timeout: cfg.FallbackTimeout}), nil
	case config.ProviderGemini:
		return gemini.NewProvider(cfg.GeminiKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// loadRules reads the fallback system prompt from path, or the built-in
// rules when path is empty.
func loadRules(path string) (string, error) {
	if path == "" {
		return fallback.ParseRules(bytes.NewReader(mesabot.DefaultRules))
	}
	return fallback.LoadRules(path)
}
