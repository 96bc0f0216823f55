package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fakellm/internal/config"
	"fakellm/internal/server"
)

var (
	flagConfig         string
	flagHost           string
	flagPort           int
	flagModels         string
	flagAliases        []string
	flagCacheDir       string
	flagLogLevel       string
	flagStartupTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "fakellmd",
	Short: "Run an OpenAI-compatible server backed by a small local model",
	Long: `fakellmd starts the embedded test server as a standalone process.
It loads the configured models, binds a local port, and serves the
OpenAI-compatible API until interrupted.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Config file path (.toml/.yaml/.json)")
	f.StringVar(&flagHost, "host", "", "Host to bind (default 127.0.0.1)")
	f.IntVar(&flagPort, "port", 0, "Port to bind (0 = ephemeral)")
	f.StringVar(&flagModels, "models", "", "Comma-separated model names or hub repo references")
	f.StringArrayVar(&flagAliases, "alias", nil, "Extra alias mapping alias=target (repeatable)")
	f.StringVar(&flagCacheDir, "cache-dir", "", "Model download cache directory")
	f.StringVar(&flagLogLevel, "log-level", envOr("FAKELLM_LOG_LEVEL", "info"), "Log level: debug, info, warn, error, off")
	f.DurationVar(&flagStartupTimeout, "startup-timeout", 0, "Bound on waiting for the listener (default 5m)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("models") {
		cfg.Models = splitCSV(flagModels)
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = flagCacheDir
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = flagLogLevel
	}
	if len(flagAliases) > 0 {
		extra, err := parseAliases(flagAliases)
		if err != nil {
			return err
		}
		if cfg.Aliases == nil {
			cfg.Aliases = map[string]string{}
		}
		for k, v := range extra {
			cfg.Aliases[k] = v
		}
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{server.DefaultModel}
	}
	timeout := flagStartupTimeout
	if timeout <= 0 && cfg.StartupTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.StartupTimeoutSeconds) * time.Second
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, server.Options{
		Models:         cfg.Models,
		Aliases:        cfg.Aliases,
		Host:           cfg.Host,
		Port:           cfg.Port,
		CacheDir:       cfg.CacheDir,
		StartupTimeout: timeout,
		Logger:         &log,
	})
	if err != nil {
		return err
	}

	args := srv.OpenAIClientArgs()
	log.Info().Str("base_url", args.BaseURL).Str("api_key", args.APIKey).
		Strs("models", srv.Models()).Msg("server ready")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "", "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "off":
		lvl = zerolog.Disabled
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, trimming spaces and dropping
// empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseAliases converts repeated alias=target flags into a map.
func parseAliases(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("invalid --alias %q, expected alias=target", p)
		}
		out[k] = v
	}
	return out, nil
}
