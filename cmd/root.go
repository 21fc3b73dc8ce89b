package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ytaudio/ytaudio/internal/api"
	"github.com/ytaudio/ytaudio/internal/config"
	"github.com/ytaudio/ytaudio/internal/media"
	"github.com/ytaudio/ytaudio/internal/scratch"
)

// shutdownGrace bounds how long in-flight responses get to finish once a
// shutdown signal arrives.
const shutdownGrace = 10 * time.Second

var (
	configPath    string
	port          int
	scratchDir    string
	skipToolCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "ytaudio",
	Short: "HTTP service that extracts audio and metadata from video URLs",
	Long: `ytaudio wraps yt-dlp behind a small HTTP API: /info resolves video
metadata without downloading, /audio downloads the best audio stream and
streams it back as MP3.`,
}

// Execute runs the root command under the given lifecycle context.
func Execute(ctx context.Context, logger *zap.Logger) {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(ctx, cmd, logger)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Error("execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func init() {
	registerFlags(rootCmd)
	pflag.CommandLine.AddFlagSet(rootCmd.Flags())
}

// registerFlags binds the service flags to cmd.
func registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to optional YAML config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides PORT and the config file)")
	cmd.Flags().StringVar(&scratchDir, "scratch-dir", "", "Root directory for per-request scratch space")
	cmd.Flags().BoolVar(&skipToolCheck, "skip-tool-check", false, "Skip the startup check for yt-dlp and ffmpeg")
}

// applyFlagOverrides layers explicitly set command-line flags over the
// resolved configuration and re-validates the result. Flags win over both
// the file and the environment, in either direction for booleans.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("scratch-dir") {
		cfg.ScratchDir = scratchDir
	}
	if flags.Changed("skip-tool-check") {
		cfg.SkipToolCheck = skipToolCheck
	}
	return cfg.Validate()
}

func run(ctx context.Context, cmd *cobra.Command, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, &cfg); err != nil {
		return err
	}

	if cfg.SkipToolCheck {
		logger.Info("tool check skipped")
	} else if err := media.CheckTools(); err != nil {
		logger.Warn("extraction tools unavailable, requests will fail until they are installed", zap.Error(err))
	}

	extractor := media.NewExtractor(logger)
	scratchMgr := scratch.NewManager(cfg.ScratchDir, logger)
	app := api.NewServer(extractor, scratchMgr, logger)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: app.Routes(),
		// No WriteTimeout: audio responses stream for as long as the
		// download and the client need.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("scratch_dir", cfg.ScratchDir),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown requested, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown incomplete, closing", zap.Error(err))
			return srv.Close()
		}
		logger.Info("shutdown complete")
		return nil
	}
}
