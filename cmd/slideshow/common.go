package main

import (
	"context"
	"fmt"

	"github.com/ivlev/slideshow/internal/config"
	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/gesture"
	"github.com/ivlev/slideshow/internal/logger"
	"github.com/ivlev/slideshow/internal/player"
	"github.com/ivlev/slideshow/internal/system"
)

// resolveDeck returns the configured deck path or the newest deck on disk.
func resolveDeck(c *config.Config) (string, error) {
	if c.DeckPath != "" {
		return c.DeckPath, nil
	}
	path, err := deck.FindLatestDeck(c.DeckDir)
	if err != nil {
		return "", fmt.Errorf("no deck given and none found: %w", err)
	}
	logger.Info("using latest deck", logger.String("path", path))
	return path, nil
}

func loadDeck(c *config.Config) (string, *deck.Deck, error) {
	path, err := resolveDeck(c)
	if err != nil {
		return "", nil, err
	}
	d, err := deck.ReadDeck(path)
	if err != nil {
		return "", nil, fmt.Errorf("load %s: %w", path, err)
	}
	return path, d, nil
}

// playerOptions combines configuration with what the host reports. Only
// reduced motion reaches the engine; timing always comes from c.
func playerOptions(c *config.Config, caps system.Capabilities, hooks engine.Hooks) player.Options {
	logger.Info("host capabilities",
		logger.String("device", string(caps.DeviceType)),
		logger.String("connection", caps.ConnectionSpeed),
		logger.Bool("slowConnection", caps.SlowConnection()),
		logger.Bool("reducedMotion", caps.ReducedMotion),
		logger.Duration("tick", c.TickInterval))

	return player.Options{
		TickInterval: c.TickInterval,
		Gesture:      gesture.Options{Threshold: c.SwipeThreshold, Vertical: c.VerticalSwipe},
		Engine: engine.Options{
			AutoPlay:           c.AutoPlay,
			IntersectionGate:   c.IntersectionGate,
			ReducedMotion:      caps.ReducedMotion,
			SettleDelay:        c.SettleDelay,
			TransitionDuration: c.TransitionDuration,
			Hooks:              hooks,
		},
	}
}

// logHooks reports timeline events at debug level.
func logHooks() engine.Hooks {
	return engine.Hooks{
		OnEnter: func(slideID, elementID string) {
			logger.Debug("element enter", logger.String("slide", slideID), logger.String("element", elementID))
		},
		OnExit: func(slideID, elementID string) {
			logger.Debug("element exit", logger.String("slide", slideID), logger.String("element", elementID))
		},
		OnSlideChange: func(from, to int) {
			logger.Debug("slide change", logger.Int("from", from), logger.Int("to", to))
		},
	}
}

// watchDeck calls apply with every valid revision of path until ctx ends.
func watchDeck(ctx context.Context, c *config.Config, path string, apply func(*deck.Deck) error) (stop func(), err error) {
	if !c.WatchDeck {
		return func() {}, nil
	}
	w, err := deck.NewWatcher(path, c.ReloadDebounce)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case d := <-w.Updates():
				if err := apply(d); err != nil {
					logger.Warn("apply reloaded deck", logger.ErrorField(err))
				}
			}
		}
	}()

	return func() {
		close(quit)
		<-done
		w.Stop()
	}, nil
}
