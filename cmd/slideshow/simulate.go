package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/player"
	"github.com/ivlev/slideshow/internal/scheduler"
	"github.com/ivlev/slideshow/internal/system"
)

var (
	simulateFor  time.Duration
	simulateStep time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the deck on a virtual clock and print the timeline",
	Long: `Plays the deck without waiting in real time and prints every slide
change and element enter/exit with its virtual timestamp. Useful to check
pacing before presenting.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().DurationVar(&simulateFor, "for", 0, "Virtual time to run (default: one full loop)")
	simulateCmd.Flags().DurationVar(&simulateStep, "step", 0, "Tick interval (default SLIDESHOW_TICK)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	_, d, err := loadDeck(cfg)
	if err != nil {
		return err
	}

	step := simulateStep
	if step <= 0 {
		step = cfg.TickInterval
	}
	total := simulateFor
	if total <= 0 {
		settle := max(cfg.SettleDelay, 0)
		total = d.TotalDuration() + time.Duration(len(d.Slides))*(settle+step)
	}

	clock := scheduler.NewManual()
	opts := playerOptions(cfg, system.Static{DeviceType: system.DeviceDesktop}.Capabilities(), timelineHooks(cmd.OutOrStdout(), clock))
	opts.TickInterval = step
	opts.Engine.AutoPlay = true
	opts.Engine.IntersectionGate = false

	p, err := player.New(d.Slides, clock, clock, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	clock.Advance(total)

	f, _ := p.Frame()
	fmt.Fprintf(cmd.OutOrStdout(), "%9s  end on slide %d (%s), %s elapsed\n",
		stamp(clock.Now()), f.Index, f.SlideID, f.Elapsed)
	return nil
}

func timelineHooks(out io.Writer, clock engine.Clock) engine.Hooks {
	return engine.Hooks{
		OnEnter: func(slideID, elementID string) {
			fmt.Fprintf(out, "%9s    + %s/%s\n", stamp(clock.Now()), slideID, elementID)
		},
		OnExit: func(slideID, elementID string) {
			fmt.Fprintf(out, "%9s    - %s/%s\n", stamp(clock.Now()), slideID, elementID)
		},
		OnSlideChange: func(from, to int) {
			fmt.Fprintf(out, "%9s  slide %d → %d\n", stamp(clock.Now()), from, to)
		},
	}
}

func stamp(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
