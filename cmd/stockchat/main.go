package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shanehull/stockchat/internal/config"
	"github.com/shanehull/stockchat/internal/logging"
)

var (
	configPath string
	logLevel   string
	prettyLogs bool

	cfg *config.Config
	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "stockchat",
		Short: "Answers questions about Vietnamese listed stocks",
		Long: `stockchat reads a question in Vietnamese or English, works out which tickers and
what kind of data it is about, gathers that data and writes an answer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.Log.Level = logLevel
			}
			if cmd.Flags().Changed("pretty") {
				loaded.Log.Pretty = prettyLogs
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			cfg = loaded
			log = logging.New(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "Human readable log output")

	rootCmd.AddCommand(serveCmd, askCmd, ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
