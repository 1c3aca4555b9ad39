package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slideshow/internal/deck"
)

func writeDeck(t *testing.T, d *deck.Deck) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, deck.WriteDeck(d, path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_FILE", "")
	t.Setenv("SLIDESHOW_DECK_DIR", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulate_PrintsTimeline(t *testing.T) {
	path := writeDeck(t, &deck.Deck{Slides: []deck.Slide{
		{ID: "intro", Duration: 2 * time.Second, Elements: []deck.Element{{ID: "title", Start: 0, End: time.Second}}},
		{ID: "body", Duration: 3 * time.Second},
		{ID: "outro", Duration: 2 * time.Second},
	}})

	out, err := execute(t, "simulate", "--deck", path, "--for", "8500ms", "--step", "100ms")
	require.NoError(t, err)

	assert.Contains(t, out, "2.500s  slide 0 → 1")
	assert.Contains(t, out, "6.000s  slide 1 → 2")
	assert.Contains(t, out, "8.500s  slide 2 → 0")
	assert.Contains(t, out, "1.100s    - intro/title")
	assert.Contains(t, out, "end on slide 0 (intro)")
}

func TestValidate(t *testing.T) {
	good := writeDeck(t, &deck.Deck{Slides: []deck.Slide{{ID: "a", Duration: time.Second}}})

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
slides:
  - id: a
    duration: 1s
    elements:
      - id: late
        start: 900ms
        end: 2s
  - id: b
    duration: 0s
`), 0644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good)

	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, `element "late"`)
	assert.Contains(t, out, "duration must be positive")
}

func TestValidate_NoDeckFound(t *testing.T) {
	deckPath = ""
	_, err := execute(t, "validate")
	assert.Error(t, err)
}
