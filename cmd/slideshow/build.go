package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/analyzer"
	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/director"
	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/source"
	"github.com/ivlev/slideshow/internal/system"
)

var (
	buildOut     string
	buildTitle   string
	buildWorkers int
	buildTotal   time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build [pdf|image|dir]",
	Short: "Build a deck from a PDF or images",
	Long: `Exports every page as a background image, detects content regions and
turns them into elements that appear one after another. Without an argument
the newest PDF in input/ is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Deck file to write (default: timestamped file in SLIDESHOW_DECK_DIR)")
	buildCmd.Flags().StringVar(&buildTitle, "title", "", "Deck title (default: input file name)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Concurrent page exports (default: CPU count)")
	buildCmd.Flags().DurationVar(&buildTotal, "total", 0, "Stretch or squeeze the deck to play for exactly this long")
}

func runBuild(cmd *cobra.Command, args []string) error {
	input := "input"
	if len(args) == 1 {
		input = args[0]
	} else {
		latest, err := system.FindLatestPDF(input)
		if err != nil {
			return fmt.Errorf("no input given: %w", err)
		}
		input = latest
	}

	src, err := source.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	detector, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		return err
	}

	title := buildTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	dir := director.NewDirector(cfg.SlideDuration)
	dir.Transition.Duration = cfg.TransitionDuration
	d, err := dir.FromSource(cmd.Context(), src, director.BuildOptions{
		Title:    title,
		MediaDir: cfg.MediaDir,
		Detector: detector,
		QRURL:    cfg.QRURL,
		Export: source.ExportOptions{
			DPI:      cfg.DPI,
			MaxWidth: cfg.MaxWidth,
			Workers:  buildWorkers,
		},
	})
	if err != nil {
		return err
	}

	if buildTotal > 0 {
		if err := director.FitDuration(d, buildTotal); err != nil {
			return err
		}
	}

	out := buildOut
	if out == "" {
		out = deck.GenerateDeckPath(cfg.DeckDir)
	}
	if err := deck.WriteDeck(d, out); err != nil {
		return err
	}

	logger.Info("deck written", logger.String("path", out))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d slides, %s\n", out, len(d.Slides), d.TotalDuration())
	return nil
}
