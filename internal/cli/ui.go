package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors, pinned items
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// itemPalette cycles through movable items in the grid view.
var itemPalette = []lipgloss.Color{
	lipgloss.Color("75"),
	lipgloss.Color("114"),
	lipgloss.Color("180"),
	lipgloss.Color("141"),
	lipgloss.Color("80"),
	lipgloss.Color("216"),
}

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	stylePinned = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleTarget = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleBoard  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Grid View
// =============================================================================

const itemTags = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// itemTag returns the one-character tag shown for the i-th item.
func itemTag(i int) string {
	if i < len(itemTags) {
		return itemTags[i : i+1]
	}
	return "#"
}

// renderGrid draws the layout as a character grid, one tag per item. Cells of
// target that no item covers show "+"; covered target cells keep their tag
// and are highlighted.
func renderGrid(l model.Layout, target *model.Rect) string {
	g := l.Grid
	cells := make([][]int, g.CountY)
	for y := range cells {
		cells[y] = make([]int, g.CountX)
		for x := range cells[y] {
			cells[y][x] = -1
		}
	}
	for i, it := range l.Items {
		for y := max(0, it.Rect.CellY); y < min(g.CountY, it.Rect.Bottom()); y++ {
			for x := max(0, it.Rect.CellX); x < min(g.CountX, it.Rect.Right()); x++ {
				cells[y][x] = i
			}
		}
	}

	inTarget := func(x, y int) bool {
		return target != nil && x >= target.CellX && x < target.Right() && y >= target.CellY && y < target.Bottom()
	}

	rows := make([]string, g.CountY)
	for y := 0; y < g.CountY; y++ {
		var b strings.Builder
		for x := 0; x < g.CountX; x++ {
			idx := cells[y][x]
			switch {
			case idx < 0 && inTarget(x, y):
				b.WriteString(styleTarget.Render(" + "))
			case idx < 0:
				b.WriteString(StyleDim.Render(" · "))
			case inTarget(x, y):
				b.WriteString(styleTarget.Reverse(true).Render(" " + itemTag(idx) + " "))
			default:
				b.WriteString(itemStyle(l.Items, idx).Render(" " + itemTag(idx) + " "))
			}
		}
		rows[y] = b.String()
	}
	return styleBoard.Render(strings.Join(rows, "\n"))
}

func itemStyle(items []model.Item, idx int) lipgloss.Style {
	if !items[idx].Reorderable {
		return stylePinned
	}
	return lipgloss.NewStyle().Foreground(itemPalette[idx%len(itemPalette)])
}

// printLayout writes the grid view followed by a legend of items.
func printLayout(w io.Writer, l model.Layout, target *model.Rect) {
	fmt.Fprintln(w, StyleTitle.Render(l.Name)+" "+StyleDim.Render(fmt.Sprintf("%dx%d · %d items · %.0f%% used",
		l.Grid.CountX, l.Grid.CountY, len(l.Items), l.Utilization())))
	fmt.Fprintln(w, renderGrid(l, target))
	for i, it := range l.Items {
		tag := itemStyle(l.Items, i).Render(itemTag(i))
		pin := ""
		if !it.Reorderable {
			pin = stylePinned.Render(" pinned")
		}
		fmt.Fprintf(w, "  %s %s %s %s%s\n", tag, StyleDim.Render(it.ID), StyleValue.Render(it.Label), StyleNumber.Render(it.Rect.String()), pin)
	}
}

// printDecision summarizes a placement decision.
func printDecision(w io.Writer, d model.Decision) {
	if !d.Accepted {
		printError(w, "rejected: %s", d.Reason)
		return
	}

	solution := "no-shuffle"
	if d.Shuffled {
		solution = "reorder"
	}
	state := "preview"
	if d.Committed {
		state = "committed"
	}
	printSuccess(w, "accepted %s (%s, %s)", StyleNumber.Render(d.Rect.String()), solution, state)
	for _, mv := range d.Displaced {
		printDetail(w, "%s %s %s %s", mv.ID, mv.From, iconArrow, mv.To)
	}
}
