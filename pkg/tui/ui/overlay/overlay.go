// Package overlay composes foreground views atop a background while
// preserving the background content outside the overlay bounds. It supports
// centered modals and popouts anchored to an absolute column, which the week
// grid uses to pin the edit surface to its day column.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

// Placement controls overlay alignment and sizing. When AnchorX is zero or
// positive it wins over Horizontal and pins the overlay's left edge to that
// column (clamped to fit).
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	AnchorX    int // absolute column; negative means unanchored
	MarginY    int
	Width      int
	Height     int
}

// Centered is the default modal placement.
func Centered(width, height int) Placement {
	return Placement{
		Horizontal: lipgloss.Center,
		Vertical:   lipgloss.Center,
		AnchorX:    -1,
		Width:      width,
		Height:     height,
	}
}

// Anchored pins the overlay's left edge to a column near the top of the grid.
func Anchored(anchorX, width, height int) Placement {
	return Placement{
		Vertical: lipgloss.Top,
		AnchorX:  anchorX,
		MarginY:  1,
		Width:    width,
		Height:   height,
	}
}

// Compose renders foreground atop background inside a width×height canvas.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	bgLines := normalize(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bgLines, "\n")
	}

	fgLines := strings.Split(foreground, "\n")
	fgWidth := placement.Width
	if fgWidth <= 0 {
		for _, line := range fgLines {
			if w := lipgloss.Width(line); w > fgWidth {
				fgWidth = w
			}
		}
	}
	if fgWidth <= 0 {
		return strings.Join(bgLines, "\n")
	}
	if fgWidth > width {
		fgWidth = width
	}

	fgHeight := placement.Height
	if fgHeight <= 0 {
		fgHeight = len(fgLines)
	}
	if fgHeight > height {
		fgHeight = height
	}

	offsetX := offsetFor(placement, width, fgWidth)
	offsetY := verticalOffset(placement, height, fgHeight)

	for row := 0; row < fgHeight; row++ {
		destY := offsetY + row
		if destY < 0 || destY >= len(bgLines) {
			continue
		}
		fgLine := ""
		if row < len(fgLines) {
			fgLine = fgLines[row]
		}
		fgLine = pad(fgLine, fgWidth)

		base := bgLines[destY]
		prefix := clip(base, 0, offsetX)
		suffix := clip(base, offsetX+fgWidth, width)
		bgLines[destY] = prefix + fgLine + suffix
	}
	return strings.Join(bgLines, "\n")
}

func offsetFor(placement Placement, width, fgWidth int) int {
	var offset int
	switch {
	case placement.AnchorX >= 0:
		offset = placement.AnchorX
	case placement.Horizontal == lipgloss.Right:
		offset = width - fgWidth
	default:
		offset = (width - fgWidth) / 2
	}
	if offset+fgWidth > width {
		offset = width - fgWidth
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func verticalOffset(placement Placement, height, fgHeight int) int {
	var offset int
	switch placement.Vertical {
	case lipgloss.Top:
		offset = placement.MarginY
	case lipgloss.Bottom:
		offset = height - fgHeight - placement.MarginY
	default:
		offset = (height - fgHeight) / 2
	}
	if offset+fgHeight > height {
		offset = height - fgHeight
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func normalize(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	current := lipgloss.Width(s)
	if current > width {
		return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
	}
	return s + strings.Repeat(" ", width-current)
}

// clip returns the cell range [start, end) of a rendered line.
func clip(s string, start, end int) string {
	if end <= start {
		return ""
	}
	total := lipgloss.Width(s)
	if start >= total {
		return strings.Repeat(" ", end-start)
	}
	var b strings.Builder
	seen := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		next := seen + rw
		if next <= start {
			seen = next
			continue
		}
		if seen >= end || next > end {
			break
		}
		b.WriteRune(r)
		seen = next
	}
	out := b.String()
	if w := lipgloss.Width(out); w < end-start {
		out += strings.Repeat(" ", end-start-w)
	}
	return out
}
