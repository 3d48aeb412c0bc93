package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/glucoscreen/internal/config"
	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
)

var rootCmd = &cobra.Command{
	Use:           "glucoscreen",
	Short:         "Diabetes risk screening service",
	Long:          "glucoscreen trains a linear SVM on a reference dataset and scores manual entries or uploaded lab reports.",
	Version:       monitoring.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg

		appLogger = monitoring.NewLoggerWithWriter(os.Stderr, monitoring.ParseLevel(cfg.Logging.Level))
		slog.SetDefault(appLogger.Logger)
		return nil
	},
}

var (
	appConfig *config.Config
	appLogger *monitoring.Logger
)

// Execute runs the command line and reports a failure on stderr
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: config.yaml in ., ./config or /etc/glucoscreen)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(modelCmd)
}
