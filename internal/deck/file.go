package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slideshow/internal/system"
)

// WriteDeck writes a deck to a YAML file (temp file, then rename).
func WriteDeck(d *Deck, path string) error {
	if d.Version == "" {
		d.Version = Version
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create deck dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp deck: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp deck: %w", err)
	}
	return nil
}

// ReadDeck reads a deck from a YAML file and validates it.
func ReadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDeck(data)
}

// ParseDeck decodes YAML deck data and validates it.
func ParseDeck(data []byte) (*Deck, error) {
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// GenerateDeckPath creates a timestamped deck filename inside dir.
func GenerateDeckPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("deck_%s.yaml", timestamp))
}

// FindLatestDeck returns the most recently modified .yaml/.yml file in dir.
func FindLatestDeck(dir string) (string, error) {
	return system.FindLatest(dir, system.DeckExtensions...)
}
