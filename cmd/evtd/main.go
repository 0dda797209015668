package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"evt/internal/config"
	"evt/internal/httpapi"
	"evt/internal/hub"
	"evt/internal/metrics"
	"evt/internal/version"
	"evt/pkg/evt"
)

const (
	defaultAddr     = ":8080"
	defaultLogLevel = "info"
)

// options are the resolved daemon settings: flag or env, then config file,
// then built-in default.
type options struct {
	configPath  string
	addr        string
	logLevel    string
	logFormat   string
	corsOrigins string
	httpLog     string
	recover     bool
	watch       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "evtd",
		Short:         "Event registry daemon with an HTTP admin API",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, o)
		},
	}
	f := root.Flags()
	f.StringVar(&o.configPath, "config", os.Getenv("EVTD_CONFIG"), "Config file (.yaml|.json|.toml|.hcl); defaults EVTD_CONFIG")
	f.StringVar(&o.addr, "addr", envOr("EVTD_ADDR", defaultAddr), "HTTP listen address, e.g. :8080; defaults EVTD_ADDR")
	f.StringVar(&o.logLevel, "log-level", envOr("EVTD_LOG_LEVEL", defaultLogLevel), "Log level: debug|info|warn|error; defaults EVTD_LOG_LEVEL")
	f.StringVar(&o.logFormat, "log-format", "", "Log format: json|console (default console on a terminal)")
	f.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	f.StringVar(&o.httpLog, "http-log", os.Getenv("EVTD_LOG_HTTP"), "Request log level: off|error|info|debug; defaults EVTD_LOG_HTTP")
	f.BoolVar(&o.recover, "recover-panics", false, "Recover subscriber panics and continue the fan-out")
	f.BoolVar(&o.watch, "watch", false, "Reload the config file when it changes")
	return root
}

func run(ctx context.Context, cmd *cobra.Command, o *options) error {
	var cfg config.Config
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	resolve(cmd, o, &cfg)

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetDefaultLogLevel(o.httpLog)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		[]string{"Content-Type", "X-Log-Level"})
	httpapi.SetBaseContext(ctx)

	obs, err := metrics.NewRegistryObserver(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	h, err := hub.New(hub.Options{Config: cfg, Logger: log, Observers: []evt.Observer{obs}})
	if err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	defer h.Close()

	if cfg.Watch && o.configPath != "" {
		go func() {
			if err := h.Watch(ctx, o.configPath); err != nil {
				log.Error().Err(err).Msg("config watch stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Int("sinks", len(cfg.Sinks)).Msg("evtd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// resolve folds flags into cfg. A flag set on the command line or through
// its environment default wins over the config file.
func resolve(cmd *cobra.Command, o *options, cfg *config.Config) {
	set := func(name, env string) bool {
		if cmd.Flags().Changed(name) {
			return true
		}
		return env != "" && os.Getenv(env) != ""
	}
	if set("addr", "EVTD_ADDR") || cfg.Addr == "" {
		cfg.Addr = o.addr
	}
	if set("log-level", "EVTD_LOG_LEVEL") || cfg.LogLevel == "" {
		cfg.LogLevel = o.logLevel
	}
	if set("log-format", "") {
		cfg.LogFormat = o.logFormat
	}
	if set("cors-origins", "") {
		cfg.CORSOrigins = splitCSV(o.corsOrigins)
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	if cfg.CORSEnabled && len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if set("recover-panics", "") {
		cfg.RecoverPanics = o.recover
	}
	if set("watch", "") {
		cfg.Watch = o.watch
	}
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if format == "" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) {
			format = "console"
		}
	}
	var l zerolog.Logger
	if format == "console" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(lvl).With().Timestamp().Str("service", "evtd").Logger()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty
// items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
