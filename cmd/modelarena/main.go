// Command modelarena is the main entry point for the modelarena server: a
// multi-vendor LLM comparison and debate arena.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrWong99/modelarena/internal/arena"
	"github.com/MrWong99/modelarena/internal/config"
	"github.com/MrWong99/modelarena/internal/httpapi"
	"github.com/MrWong99/modelarena/internal/observe"
	"github.com/MrWong99/modelarena/internal/orchestrate"
	"github.com/MrWong99/modelarena/internal/resilience"
	"github.com/MrWong99/modelarena/pkg/provider/chat"
	"github.com/MrWong99/modelarena/pkg/provider/chat/anthropic"
	"github.com/MrWong99/modelarena/pkg/provider/chat/anyllm"
	"github.com/MrWong99/modelarena/pkg/provider/chat/openai"
	"github.com/MrWong99/modelarena/pkg/provider/chat/xai"
	"github.com/MrWong99/modelarena/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	envFile := flag.String("env", ".env", "path to an optional dotenv file with vendor API keys")
	flag.Parse()

	// ── Environment file (optional) ───────────────────────────────────────────
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "modelarena: load %q: %v\n", *envFile, err)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		// No config file is fine; run from environment variables alone.
		cfg = config.FromEnv()
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "modelarena: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("modelarena starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	registry, err := buildRegistry(cfg, metrics)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	catalog := registry.ListModels()
	if len(catalog) == 0 {
		slog.Warn("no vendor API keys found; catalog is empty — set OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, GROK_API_KEY, or DEEPSEEK_API_KEY")
	}

	// ── Core services ─────────────────────────────────────────────────────────
	comparator := orchestrate.New(registry, metrics, cfg.Defaults.CallTimeout.Std(), cfg.Defaults.CompareTimeout.Std())
	sessions := arena.NewManager(registry, metrics, cfg.Arena.SessionTTL.Std())
	go sessions.Run(ctx, time.Minute)

	api := httpapi.New(httpapi.Config{
		Registry:         registry,
		Comparator:       comparator,
		Sessions:         sessions,
		Metrics:          metrics,
		TurnTimeout:      cfg.Arena.TurnTimeout.Std(),
		MaxTurns:         cfg.Arena.MaxTurns,
		DefaultMaxTokens: cfg.Defaults.MaxTokens,
	})

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printStartupSummary(cfg, catalog)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		if cfg.Server.TLS != nil {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildRegistry constructs one adapter per vendor with a configured key and
// registers it behind a circuit-breaker guard. A vendor without a key is
// skipped, not an error.
func buildRegistry(cfg *config.Config, metrics *observe.Metrics) (*chat.Registry, error) {
	registry := chat.NewRegistry()

	register := func(vendor string, adapter chat.Adapter, err error) error {
		if err != nil {
			return fmt.Errorf("create %s adapter: %w", vendor, err)
		}
		if err := registry.Register(resilience.NewGuard(adapter, metrics, resilience.CircuitBreakerConfig{})); err != nil {
			return fmt.Errorf("register %s adapter: %w", vendor, err)
		}
		slog.Info("vendor registered", "vendor", vendor, "models", len(adapter.Models()))
		return nil
	}

	if v := cfg.Vendors.OpenAI; v.Enabled() {
		var opts []openai.Option
		if v.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(v.BaseURL))
		}
		if cfg.Defaults.MaxTokens > 0 {
			opts = append(opts, openai.WithDefaultMaxTokens(cfg.Defaults.MaxTokens))
		}
		a, err := openai.New(v.APIKey, opts...)
		if err := register("openai", a, err); err != nil {
			return nil, err
		}
	}

	if v := cfg.Vendors.Anthropic; v.Enabled() {
		var opts []anthropic.Option
		if v.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(v.BaseURL))
		}
		if cfg.Defaults.MaxTokens > 0 {
			opts = append(opts, anthropic.WithDefaultMaxTokens(cfg.Defaults.MaxTokens))
		}
		a, err := anthropic.New(v.APIKey, opts...)
		if err := register("anthropic", a, err); err != nil {
			return nil, err
		}
	}

	if v := cfg.Vendors.XAI; v.Enabled() {
		var opts []xai.Option
		if v.BaseURL != "" {
			opts = append(opts, xai.WithBaseURL(v.BaseURL))
		}
		if cfg.Defaults.MaxTokens > 0 {
			opts = append(opts, xai.WithDefaultMaxTokens(cfg.Defaults.MaxTokens))
		}
		a, err := xai.New(v.APIKey, opts...)
		if err := register("xai", a, err); err != nil {
			return nil, err
		}
	}

	if v := cfg.Vendors.Gemini; v.Enabled() {
		var opts []anyllm.Option
		if v.BaseURL != "" {
			opts = append(opts, anyllm.WithBaseURL(v.BaseURL))
		}
		if cfg.Defaults.MaxTokens > 0 {
			opts = append(opts, anyllm.WithDefaultMaxTokens(cfg.Defaults.MaxTokens))
		}
		a, err := anyllm.NewGemini(v.APIKey, opts...)
		if err := register("gemini", a, err); err != nil {
			return nil, err
		}
	}

	if v := cfg.Vendors.DeepSeek; v.Enabled() {
		var opts []anyllm.Option
		if v.BaseURL != "" {
			opts = append(opts, anyllm.WithBaseURL(v.BaseURL))
		}
		if cfg.Defaults.MaxTokens > 0 {
			opts = append(opts, anyllm.WithDefaultMaxTokens(cfg.Defaults.MaxTokens))
		}
		a, err := anyllm.NewDeepSeek(v.APIKey, opts...)
		if err := register("deepseek", a, err); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, catalog []types.ModelConfig) {
	perVendor := make(map[string]int)
	for _, mc := range catalog {
		perVendor[mc.Provider]++
	}

	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       modelarena — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	for _, vendor := range []string{"openai", "anthropic", "gemini", "xai", "deepseek"} {
		value := "(no key)"
		if n := perVendor[vendor]; n > 0 {
			value = fmt.Sprintf("%d models", n)
		}
		fmt.Printf("║  %-12s    : %-19s ║\n", vendor, value)
	}
	fmt.Printf("║  Catalog total   : %-19d ║\n", len(catalog))
	fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}
