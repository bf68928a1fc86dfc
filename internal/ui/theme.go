package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/rdigest/internal/config"
)

// Catppuccin Mocha defaults, overridable from the [theme] config section.
const (
	defaultAccent = "#a6e3a1"
	defaultError  = "#f38ba8"
	defaultMuted  = "#5a6278"
)

// theme holds styles bound to the diagnostic writer's renderer, so color
// is only emitted when that writer is a terminal.
type theme struct {
	accent lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

func newTheme(w io.Writer, cfg config.Theme) *theme {
	r := lipgloss.NewRenderer(w)
	return &theme{
		accent: r.NewStyle().Foreground(lipgloss.Color(pick(cfg.Accent, defaultAccent))),
		err:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(pick(cfg.Error, defaultError))),
		muted:  r.NewStyle().Foreground(lipgloss.Color(pick(cfg.Muted, defaultMuted))),
	}
}

func pick(override *string, fallback string) string {
	if override != nil && *override != "" {
		return *override
	}
	return fallback
}
