package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/adapters/file"
	"github.com/aretw0/tendril/internal/adapters/memory"
	"github.com/aretw0/tendril/internal/adapters/redis"
	"github.com/aretw0/tendril/internal/logging"
	httpAdapter "github.com/aretw0/tendril/pkg/adapters/http"
	"github.com/aretw0/tendril/pkg/interceptors"
	"github.com/aretw0/tendril/pkg/ports"
)

// serveConfig is read from the environment. The --addr flag overrides the
// listen address.
type serveConfig struct {
	Addr          string        `env:"TENDRIL_ADDR" envDefault:":8080"`
	SkillID       string        `env:"TENDRIL_SKILL_ID"`
	RedisAddr     string        `env:"TENDRIL_REDIS_ADDR"`
	RedisPassword string        `env:"TENDRIL_REDIS_PASSWORD"`
	RedisDB       int           `env:"TENDRIL_REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"TENDRIL_REDIS_TTL" envDefault:"0"`
	AttributesDir string        `env:"TENDRIL_ATTRIBUTES_DIR"`
	Debug         bool          `env:"TENDRIL_DEBUG"`
}

// metricsModule contributes the Prometheus interceptor pair to the skill.
type metricsModule struct {
	metrics *interceptors.Metrics
}

func (m metricsModule) Setup(mc *tendril.ModuleContext) error {
	mc.AddRequestInterceptors(m.metrics.Request())
	mc.AddResponseInterceptors(m.metrics.Response())
	return nil
}

// skillIDModule turns on skill id verification for every dispatch.
type skillIDModule struct {
	id string
}

func (m skillIDModule) Setup(mc *tendril.ModuleContext) error {
	mc.SetSkillID(m.id)
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long: `Starts the demo skill behind the HTTP debug adapter, exposing POST
/invoke plus health, info and Prometheus metrics endpoints.

Configuration comes from the environment:

  TENDRIL_ADDR            listen address (default :8080)
  TENDRIL_SKILL_ID        reject envelopes stamped for another skill
  TENDRIL_REDIS_ADDR      keep attributes in Redis at this address
  TENDRIL_REDIS_PASSWORD  Redis password
  TENDRIL_REDIS_DB        Redis database number
  TENDRIL_REDIS_TTL       expire stored attributes (e.g. 24h)
  TENDRIL_ATTRIBUTES_DIR  keep attributes on disk in this directory
  TENDRIL_DEBUG           enable debug logging

Without Redis or a directory configured, attributes live in process
memory and vanish on restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg serveConfig
		if err := env.Parse(&cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing environment: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.Debug = true
		}

		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger := logging.NewJSON(level)

		var adapter ports.PersistenceAdapter
		switch {
		case cfg.RedisAddr != "":
			store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.RedisTTL))
			defer store.Close()
			adapter = store
			logger.Info("attributes stored in redis", "addr", cfg.RedisAddr, "ttl", cfg.RedisTTL)
		case cfg.AttributesDir != "":
			adapter = file.New(cfg.AttributesDir)
			logger.Info("attributes stored on disk", "dir", cfg.AttributesDir)
		default:
			adapter = memory.New()
			logger.Info("attributes stored in memory")
		}

		metrics := interceptors.NewMetrics()
		modules := []tendril.Module{metricsModule{metrics: metrics}}
		if cfg.SkillID != "" {
			modules = append(modules, skillIDModule{id: cfg.SkillID})
		}

		skill, err := demoSkill(adapter, logger, modules...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error assembling skill: %v\n", err)
			os.Exit(1)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/", httpAdapter.NewHandler(skill, httpAdapter.WithLogger(logger)))

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("server started", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			logger.Error("server failed", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("could not stop server", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides TENDRIL_ADDR)")
}
