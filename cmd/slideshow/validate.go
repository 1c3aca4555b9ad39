package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideshow/internal/deck"
)

var validateCmd = &cobra.Command{
	Use:   "validate [deck...]",
	Short: "Check deck files for timeline errors",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		path, err := resolveDeck(cfg)
		if err != nil {
			return err
		}
		paths = []string{path}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		d, err := deck.ReadDeck(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s\n", path)
			for _, e := range unjoin(err) {
				fmt.Fprintf(out, "    %v\n", e)
			}
			continue
		}
		fmt.Fprintf(out, "✓ %s (%d slides, %s)\n", path, len(d.Slides), d.TotalDuration())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d decks invalid", failed, len(paths))
	}
	return nil
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
