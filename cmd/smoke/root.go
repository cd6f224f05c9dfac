package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NetPo4ki/go-smoke/config"
	"github.com/NetPo4ki/go-smoke/logger"
	"github.com/NetPo4ki/go-smoke/observe/prom"
	"github.com/NetPo4ki/go-smoke/observe/zlog"
	"github.com/NetPo4ki/go-smoke/scheduler"
)

type globalFlags struct {
	configFile  string
	envFile     string
	logLevel    string
	logFormat   string
	backend     string
	threads     int
	metricsAddr string
}

func (f *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configFile, "config", "c", "", "config file path")
	fs.StringVar(&f.envFile, "env-file", "", ".env file to load before reading the environment")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "log format, 'console' or 'json'")
	fs.StringVar(&f.backend, "scheduler", "", "scheduler backend, 'sync', 'thread' or 'pool'")
	fs.IntVar(&f.threads, "threads", 0, "pool size for the pool backend")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// env is the runtime every subcommand works with.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	sched *scheduler.Scheduler
	reg   *prometheus.Registry
	srv   *http.Server
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	e := &env{}
	root := &cobra.Command{
		Use:          "smoke",
		Short:        "run tasks and streams on a configurable scheduler",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd.Flags(), &flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return e.shutdown(cmd.Context())
		},
	}
	flags.register(root.PersistentFlags())
	root.AddCommand(newDemoCmd(e), newLinesCmd(e), newBenchCmd(e))
	root.SetErrPrefix("smoke:")
	return root
}

func (e *env) setup(fs *pflag.FlagSet, f *globalFlags) error {
	opts := []config.LoaderOption{}
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if fs.Changed("scheduler") {
		cfg.Scheduler.Backend = f.backend
	}
	if fs.Changed("threads") {
		cfg.Scheduler.Threads = f.threads
	}
	if fs.Changed("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.log = logger.New(cfg.Logging, os.Stderr)

	e.reg = prometheus.NewRegistry()
	e.reg.MustRegister(collectors.NewGoCollector())
	metrics, err := prom.New(e.reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	e.sched, err = cfg.Scheduler.Build(scheduler.WithObserver(scheduler.Observers{metrics, zlog.New(e.log)}))
	if err != nil {
		return err
	}
	if p := e.sched.ThreadPool(); p != nil {
		if err := prom.RegisterPool(e.reg, e.sched.Name(), p); err != nil {
			return fmt.Errorf("registering pool metrics: %w", err)
		}
	}
	e.log.Debug().
		Str("backend", e.sched.Backend().String()).
		Str("scheduler", e.sched.Name()).
		Msg("scheduler ready")

	if cfg.Metrics.Addr != "" {
		e.serveMetrics()
	}
	return nil
}

func (e *env) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle(e.cfg.Metrics.Path, promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{}))
	e.srv = &http.Server{
		Addr:              e.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		e.log.Info().Str("address", e.srv.Addr).Str("path", e.cfg.Metrics.Path).Msg("metrics server started")
		if err := e.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func (e *env) shutdown(ctx context.Context) error {
	if e.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return e.srv.Shutdown(ctx)
}
