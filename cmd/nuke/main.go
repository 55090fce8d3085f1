package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"telegram-nuke/internal/app"
	"telegram-nuke/internal/infra/config"
	"telegram-nuke/internal/infra/logger"
	"telegram-nuke/internal/infra/pr"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envPath string
		dryRun  bool
	)

	rootCmd := &cobra.Command{
		Use:           "nuke",
		Short:         "Leave every Telegram channel/group and delete every private chat outside the keep folders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), envPath, dryRun)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "path to .env file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without prompting or changing anything")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println(app.Version)
			},
		},
		newJournalCmd(&envPath),
	)

	return rootCmd
}

func run(parent context.Context, envPath string, dryRun bool) error {
	if err := pr.Init(); err != nil {
		logger.Error("failed to init readline", zap.Error(err))
		return err
	}
	defer pr.Close()

	cfg, err := config.Load(envPath)
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return err
	}
	env := cfg.GetEnv()

	// Консольный вывод идёт через readline, чтобы логи не рвали строку ввода.
	logger.Init(env.LogLevel)
	logger.SetWriters(pr.Stdout(), pr.Stderr())
	if env.LogFile != "" {
		logger.InitFile(logger.FileOptions{
			Path:       env.LogFile,
			Level:      env.LogFileLevel,
			MaxSizeMB:  env.LogFileMaxSize,
			MaxBackups: env.LogFileMaxBackups,
			MaxAgeDays: env.LogFileMaxAge,
			Compress:   env.LogFileCompress,
		})
	}
	defer logger.Close()
	for _, msg := range cfg.Warnings() {
		logger.Warn(msg)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runErr := app.NewApp(cfg, dryRun).Run(ctx); runErr != nil {
		logger.Error("nuke failed", zap.Error(runErr))
		return runErr
	}
	return nil
}
