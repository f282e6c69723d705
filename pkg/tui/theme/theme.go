// Package theme centralizes Lip Gloss styles for the calendar UI.
package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Theme groups the style catalogs used across the calendar surfaces.
type Theme struct {
	Calendar CalendarTheme
	Item     ItemTheme
	Overlay  OverlayTheme
	Status   StatusTheme
}

// CalendarTheme styles the day/week/month grids.
type CalendarTheme struct {
	Header   lipgloss.Style
	DayLabel lipgloss.Style
	Adjacent lipgloss.Style // leading/trailing days from neighboring months
	Today    lipgloss.Style
	Selected lipgloss.Style
	GridLine lipgloss.Style
}

// ItemTheme styles individual agenda rows.
type ItemTheme struct {
	Timed     lipgloss.Style
	Untimed   lipgloss.Style
	Completed lipgloss.Style
	Habit     lipgloss.Style
	Trip      lipgloss.Style
	Cursor    lipgloss.Style
	Checked   lipgloss.Style
}

// OverlayTheme styles the edit popout and trip detail surfaces.
type OverlayTheme struct {
	Frame    lipgloss.Style
	Inline   lipgloss.Style // in-grid popout variant
	Title    lipgloss.Style
	Label    lipgloss.Style
	Subtle   lipgloss.Style
	ErrorMsg lipgloss.Style
}

// StatusTheme styles the bottom status bar.
type StatusTheme struct {
	Bar   lipgloss.Style
	Help  lipgloss.Style
	Error lipgloss.Style
}

// Default returns the built-in theme. Contrast choices lean on the detected
// terminal background.
func Default() Theme {
	dark := termenv.HasDarkBackground()
	subtle := lipgloss.Color("244")
	if !dark {
		subtle = lipgloss.Color("241")
	}

	return Theme{
		Calendar: CalendarTheme{
			Header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
			DayLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
			Adjacent: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true),
			Today:    lipgloss.NewStyle().Underline(true),
			Selected: lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0")),
			GridLine: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		},
		Item: ItemTheme{
			Timed:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
			Untimed:   lipgloss.NewStyle().Foreground(subtle),
			Completed: lipgloss.NewStyle().Foreground(subtle).Strikethrough(true),
			Habit:     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
			Trip:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Cursor:    lipgloss.NewStyle().Reverse(true),
			Checked:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		},
		Overlay: OverlayTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Inline: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				Padding(0, 1),
			Title:    lipgloss.NewStyle().Bold(true),
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Subtle:   lipgloss.NewStyle().Foreground(subtle),
			ErrorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Status: StatusTheme{
			Bar:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Error: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
	}
}

// ItemStyle derives a style from an item's stored color, dimming it toward
// the background so saturated user colors stay readable.
func (t Theme) ItemStyle(hex string, fallback lipgloss.Style) lipgloss.Style {
	if hex == "" {
		return fallback
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	blended := c.BlendLab(colorful.Color{R: 0.5, G: 0.5, B: 0.5}, 0.25).Clamped()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(blended.Hex()))
}
