package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/config"
	"github.com/ivlev/slideshow/internal/logger"
)

var (
	cfg *config.Config

	deckPath   string
	logLevel   string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "slideshow",
	Short: "Timed slide decks: build, preview and play",
	Long: `slideshow plays YAML slide decks with per-element timelines, autoplay,
transitions and swipe navigation. Decks can be built from a PDF or a folder
of images, previewed in the browser or played in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Flags().Changed("deck") {
			cfg.DeckPath = deckPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}
		if err := logger.InitLogger(cfg.Logger()); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deckPath, "deck", "d", "", "Deck file (default: newest deck in SLIDESHOW_DECK_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Also log to stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
