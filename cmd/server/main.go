package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/batalla-naval/internal/archive"
	"github.com/DoyleJ11/batalla-naval/internal/config"
	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/httpapi"
	"github.com/DoyleJ11/batalla-naval/internal/hub"
	"github.com/DoyleJ11/batalla-naval/internal/lobby"
	"github.com/DoyleJ11/batalla-naval/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Config

	cmd := &cobra.Command{
		Use:   "batalla-server",
		Short: "Serve the batalla naval scoreboard",
		Long: `batalla-server serves the game-night scoreboard: four team scores
and four 6x6 marking grids, shared live between every open browser.

Settings come from the environment (and .env); flags win over both.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flags)
			if err := cfg.Finish(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Addr, "addr", config.DefaultAddr, "listen address")
	f.StringVar(&flags.BasePath, "base-path", config.DefaultBasePath, "URL prefix the app is served under")
	f.StringVar(&flags.DefaultLobby, "lobby", config.DefaultLobby, "code of the lobby served at the base path")
	f.StringVar(&flags.LogLevel, "log-level", "info", "debug, info, warn or error")
	f.BoolVar(&flags.Dev, "dev", false, "human-readable logs")
	f.StringVar(&flags.DatabaseURL, "database-url", "", "postgres DSN for the round archive (disabled when empty)")
	f.StringVar(&flags.RosterFile, "roster", "", "YAML file with the four team names")
	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, flags config.Config) {
	set := cmd.Flags().Changed
	if set("addr") {
		cfg.Addr = flags.Addr
	}
	if set("base-path") {
		cfg.BasePath = flags.BasePath
	}
	if set("lobby") {
		cfg.DefaultLobby = flags.DefaultLobby
	}
	if set("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if set("dev") {
		cfg.Dev = flags.Dev
	}
	if set("database-url") {
		cfg.DatabaseURL = flags.DatabaseURL
	}
	if set("roster") {
		cfg.RosterFile = flags.RosterFile
	}
}

func run(parent context.Context, cfg config.Config) (err error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts := []lobby.Option{lobby.WithLogger(log)}
	var rounds httpapi.RoundLister
	if cfg.DatabaseURL != "" {
		store, openErr := archive.Open(cfg.DatabaseURL, log)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		opts = append(opts, lobby.WithRecorder(store))
		rounds = store
		log.Info("round archive enabled")
	}

	// The hub outlives ctx so in-flight requests can finish during shutdown.
	h := hub.NewHub(context.Background(), opts...)
	h.Ensure(cfg.DefaultLobby, engine.NewEmptyState(cfg.Roster))

	handler, err := httpapi.SetupRoutes(httpapi.Deps{
		Hub:          h,
		Roster:       cfg.Roster,
		BasePath:     cfg.BasePath,
		DefaultLobby: cfg.DefaultLobby,
		Rounds:       rounds,
		Log:          log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("base_path", cfg.BasePath+"/"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr := srv.Shutdown(shutdownCtx)
		h.Shutdown()
		return shutdownErr
	})
	return g.Wait()
}
