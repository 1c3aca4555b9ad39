package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivlev/slideshow/internal/deck"
	"github.com/ivlev/slideshow/internal/engine"
	"github.com/ivlev/slideshow/internal/renderer"
)

// Controller is the part of the player the terminal view drives.
type Controller interface {
	Next() bool
	Prev() bool
	GoTo(index int) bool
	Toggle()
	OnVisibilityChange(visible bool)
	Frame() (engine.Frame, bool)
	Slides() []deck.Slide
}

// DefaultRefresh is how often the view polls the player.
const DefaultRefresh = 50 * time.Millisecond

type refreshMsg struct{}

// Model is the bubbletea model of a running slideshow. It polls the
// player instead of being pushed frames, so the player never waits on the
// terminal.
type Model struct {
	ctl     Controller
	refresh time.Duration
	styles  styles

	frame  engine.Frame
	ok     bool
	slides []deck.Slide
	width  int
}

// New returns a model driving ctl.
func New(ctl Controller, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	m := Model{ctl: ctl, refresh: refresh, styles: newStyles(), width: 60}
	m.poll()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) poll() {
	m.frame, m.ok = m.ctl.Frame()
	m.slides = m.ctl.Slides()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.poll()
		if !m.ok {
			return m, tea.Quit
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", "pgdown":
			m.ctl.Next()
		case "left", "p", "pgup":
			m.ctl.Prev()
		case " ", "space":
			m.ctl.Toggle()
		case "h":
			m.ctl.OnVisibilityChange(!m.frame.Visible)
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.ctl.GoTo(int(msg.String()[0] - '1'))
		default:
			return m, nil
		}
		m.poll()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ok {
		return "no slides\n"
	}
	f := m.frame
	var b strings.Builder

	b.WriteString(m.styles.Header.Render(fmt.Sprintf("slide %d/%d  %s", f.Index+1, f.SlideCount, f.SlideID)))
	b.WriteString("\n\n")
	b.WriteString(m.progressBar(f))
	fmt.Fprintf(&b, "  %s / %s\n", f.Elapsed.Truncate(100*time.Millisecond), f.Duration)

	if f.Index < len(m.slides) && m.slides[f.Index].ID == f.SlideID {
		view := renderer.Render(m.slides[f.Index], f)
		if len(view.Elements) > 0 {
			b.WriteString(m.styles.Title.Render("elements"))
			b.WriteString("\n")
		}
		for _, el := range view.Elements {
			if el.Active {
				b.WriteString(m.styles.Active.Render(fmt.Sprintf("  ● %-16s %3.0f%%", el.ID, el.Opacity*100)))
			} else {
				b.WriteString(m.styles.Inactive.Render(fmt.Sprintf("  ○ %s", el.ID)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.Status.Render(status(f)))
	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("←/→ navigate · space play/pause · 1-9 jump · h hide · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) progressBar(f engine.Frame) string {
	width := max(10, m.width-24)
	filled := 0
	if f.Duration > 0 {
		filled = int(float64(width) * float64(f.Elapsed) / float64(f.Duration))
	}
	filled = min(max(filled, 0), width)
	return m.styles.Bar.Render(strings.Repeat("█", filled)) +
		m.styles.BarEmpty.Render(strings.Repeat("░", width-filled))
}

func status(f engine.Frame) string {
	var parts []string
	switch {
	case !f.Visible:
		parts = append(parts, "hidden")
	case f.Playing:
		parts = append(parts, "playing")
	default:
		parts = append(parts, "paused")
	}
	if f.InTransition {
		parts = append(parts, fmt.Sprintf("transition %.0f%%", f.TransitionProgress*100))
	}
	return strings.Join(parts, " · ")
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctl Controller, refresh time.Duration) error {
	_, err := tea.NewProgram(New(ctl, refresh), tea.WithAltScreen()).Run()
	return err
}
