package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/arloliu/solo/internal/logging"
)

type flags struct {
	configPath string
	natsURL    string
	adminAddr  string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "solo",
		Short:         "Run a single-active JetStream relay guarded by a shared lease",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadHostConfig(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", os.Getenv("SOLO_CONFIG"), "path to the YAML config file")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "NATS server URL (overrides nats.url)")
	cmd.Flags().StringVar(&f.adminAddr, "admin-addr", "", "admin HTTP listen address (overrides admin.addr)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

// apply lets explicit flags win over the file.
func (f *flags) apply(cmd *cobra.Command, cfg *hostConfig) {
	if cmd.Flags().Changed("nats-url") {
		cfg.NATS.URL = f.natsURL
	}
	if cmd.Flags().Changed("admin-addr") {
		cfg.Admin.Addr = f.adminAddr
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func run(parent context.Context, cfg hostConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewJSON(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.NATS.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer nc.Close()

	a, err := newApp(ctx, cfg, nc, logger)
	if err != nil {
		return err
	}

	if err := a.start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-a.server.Err():
		if ok {
			runErr = fmt.Errorf("admin server failed: %w", err)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Election.ShutdownTimeout)
	defer cancel()

	if err := a.stop(stopCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if err := nc.Drain(); err != nil {
		logger.Warn("failed to drain NATS connection", "error", err)
	}

	return runErr
}
