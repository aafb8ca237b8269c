package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Oxyrus/photojournal/internal/config"
	"github.com/Oxyrus/photojournal/internal/logging"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "photojournal",
	Short:         "A one-photo-a-day journal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			loaded.DataDir = dir
		}
		cfg = loaded
		logger = logging.New(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (overrides PHOTOJOURNAL_DATA_DIR)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		bootstrapLogger := logger
		if bootstrapLogger == nil {
			bootstrapLogger = logging.New(slog.LevelInfo)
		}
		bootstrapLogger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
