package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/player"
	"github.com/ivlev/slideshow/internal/scheduler"
	"github.com/ivlev/slideshow/internal/system"
	"github.com/ivlev/slideshow/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the deck in the terminal",
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	path, d, err := loadDeck(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	caps := system.NewHostProvider().Capabilities()
	p, err := player.New(d.Slides, scheduler.Ticker{}, scheduler.NewMonotonicClock(), playerOptions(cfg, caps, logHooks()))
	if err != nil {
		return err
	}
	defer p.Close()

	stopWatch, err := watchDeck(ctx, cfg, path, func(d *deck.Deck) error {
		return p.Reload(d.Slides)
	})
	if err != nil {
		return err
	}
	defer stopWatch()

	return tui.Run(p, cfg.TickInterval)
}
