package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/player"
	"github.com/ivlev/slideshow/internal/preview"
	"github.com/ivlev/slideshow/internal/scheduler"
	"github.com/ivlev/slideshow/internal/system"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deck with a browser preview and control API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default SLIDESHOW_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	path, d, err := loadDeck(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caps := system.NewHostProvider().Capabilities()
	p, err := player.New(d.Slides, scheduler.Ticker{}, scheduler.NewMonotonicClock(), playerOptions(cfg, caps, logHooks()))
	if err != nil {
		return err
	}
	defer p.Close()

	srv := preview.NewServer(p, d, cfg.MediaDir)
	srv.TransitionFallback = cfg.TransitionDuration

	stopWatch, err := watchDeck(ctx, cfg, path, srv.SetDeck)
	if err != nil {
		return err
	}
	defer stopWatch()

	logger.Info("serving deck", logger.String("path", path), logger.Int("slides", len(d.Slides)))
	return srv.ListenAndServe(ctx, cfg.Addr)
}
