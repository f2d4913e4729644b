package cli

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/vkgraph/pkg/errors"
)

var (
	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	promptInputStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// SeedModel - Interactive seed prompt
// =============================================================================

// SeedModel is the bubbletea model asking for a crawl seed.
type SeedModel struct {
	Default   string
	Input     string
	Err       string
	Done      bool
	Cancelled bool
}

// NewSeedModel creates a prompt pre-filled with def as the fallback answer.
func NewSeedModel(def string) SeedModel {
	return SeedModel{Default: def}
}

func (m SeedModel) Init() tea.Cmd {
	return nil
}

func (m SeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		if _, err := errors.ValidateSeed(m.Value()); err != nil {
			m.Err = errors.UserMessage(err)
			return m, nil
		}
		m.Done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Input += string(key.Runes)
	}
	m.Err = ""
	return m, nil
}

// Value returns the typed seed, or the default when nothing was typed.
func (m SeedModel) Value() string {
	if s := strings.TrimSpace(m.Input); s != "" {
		return s
	}
	return m.Default
}

func (m SeedModel) View() string {
	if m.Done || m.Cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptLabelStyle.Render("Seed user"))
	b.WriteString(StyleDim.Render(" (id, screen name or profile URL) [" + m.Default + "]: "))
	b.WriteString(promptInputStyle.Render(m.Input))
	b.WriteString("█\n")
	if m.Err != "" {
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err + "\n")
	}
	return b.String()
}

// seedArg returns the seed from args, an interactive prompt on a terminal,
// or def, in that order. The result is validated.
func (c *CLI) seedArg(ctx context.Context, args []string, def string) (string, error) {
	if len(args) > 0 {
		return errors.ValidateSeed(args[0])
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		c.Logger.Debug("no seed given, using configured seed", "seed", def)
		return errors.ValidateSeed(def)
	}

	final, err := tea.NewProgram(NewSeedModel(def), tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	m := final.(SeedModel)
	if m.Cancelled {
		return "", context.Canceled
	}
	return errors.ValidateSeed(m.Value())
}
