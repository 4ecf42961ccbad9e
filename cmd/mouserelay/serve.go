package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-relay/internal/catalog"
	"github.com/mouse-relay/internal/commands"
	"github.com/mouse-relay/internal/config"
	"github.com/mouse-relay/internal/discovery"
	"github.com/mouse-relay/internal/input"
	"github.com/mouse-relay/internal/logging"
	"github.com/mouse-relay/internal/server"
	"github.com/mouse-relay/internal/state"
	"github.com/mouse-relay/internal/voice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command and discovery listeners",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, _, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting mouse relay",
		zap.Int("commandPort", cfg.Network.Command.Port),
		zap.Int("discoveryPort", cfg.Network.Discovery.Port),
		zap.String("backend", cfg.Input.Backend),
		zap.Float64("scale", cfg.Session.Scale),
		zap.Int("threshold", cfg.Voice.Threshold))

	dispatcher, session, err := buildDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	cmdServer, err := server.NewServer(cfg, dispatcher, logger)
	if err != nil {
		return err
	}
	responder := discovery.NewResponder(cfg, logger)

	// Both channels are bound before either loop starts
	if err := responder.Listen(); err != nil {
		return err
	}
	if err := cmdServer.Listen(); err != nil {
		responder.Close()
		return err
	}

	if cfg.Network.Discovery.MDNS.Enabled {
		adv := discovery.NewAdvertiser(cfg, logger)
		if err := adv.Start(); err != nil {
			logger.Warn("mDNS advertisement disabled", zap.Error(err))
		} else {
			defer adv.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return responder.Serve(gctx) })
	g.Go(func() error { return cmdServer.Serve(gctx) })

	err = g.Wait()
	responder.Close()
	cmdServer.Close()

	stats := cmdServer.Stats()
	snap := session.Snapshot()
	logger.Info("Servers stopped",
		zap.Uint64("received", stats.Received),
		zap.Uint64("rejected", stats.Rejected),
		zap.Uint64("readFailures", stats.Failed),
		zap.Float64("scale", snap.Scale),
		zap.Time("scaleUpdatedAt", snap.UpdatedAt))
	return err
}

// buildDispatcher wires catalog, resolver, backend and session into a dispatcher
func buildDispatcher(cfg *config.Config, logger *zap.Logger) (*commands.Dispatcher, *state.Session, error) {
	cat, err := catalog.Default().WithSynonyms(cfg.Voice.ExtraSynonyms)
	if err != nil {
		return nil, nil, err
	}
	resolver := voice.NewResolver(cat, voice.WithThreshold(cfg.Voice.Threshold))

	backend, err := input.New(input.Options{
		Name: cfg.Input.Backend,
		Xdotool: input.XdotoolOptions{
			Command: cfg.Input.Xdotool,
			Timeout: time.Duration(cfg.Input.TimeoutMs) * time.Millisecond,
		},
		Logger: logger.Named("input"),
	})
	if err != nil {
		return nil, nil, err
	}

	registry := commands.NewActionRegistry()
	if err := commands.RegisterCatalogActions(registry, cat, backend, cfg.Input.ScrollStep); err != nil {
		return nil, nil, err
	}

	for _, name := range registry.List() {
		h, _ := registry.Get(name)
		logger.Debug("Registered action", zap.String("action", name), zap.String("description", h.GetDescription()))
	}

	session := state.NewSession(cfg.Session.Scale)
	return commands.NewDispatcher(resolver, session, backend, registry, logger.Named("dispatch")), session, nil
}
