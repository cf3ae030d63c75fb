// Package ui provides terminal styling for vtb CLI output.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/spineworks/vertebrae/internal/types"
)

var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

// Status styles - consistent across all commands
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// Tree characters for hierarchical display
const (
	TreeBranch = "├─ "
	TreeLast   = "└─ "
	TreePipe   = "│  "
	TreeIndent = "   "
)

// Configure applies the color setting: "always" forces ANSI on, "never"
// strips it, "auto" leaves detection to termenv. NO_COLOR wins over auto.
func Configure(color string) {
	switch color {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		if os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}

// TermWidth returns the terminal width, or 80 when stdout is not a tty.
func TermWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// StatusStyle maps a lifecycle status to its display style.
func StatusStyle(s types.Status) lipgloss.Style {
	switch s {
	case types.StatusBacklog:
		return MutedStyle
	case types.StatusTodo:
		return AccentStyle
	case types.StatusInProgress:
		return WarnStyle
	case types.StatusPendingReview:
		return HeaderStyle
	case types.StatusDone:
		return PassStyle
	case types.StatusRejected:
		return FailStyle
	}
	return MutedStyle
}

// RenderStatus renders a status name in its color.
func RenderStatus(s types.Status) string {
	return StatusStyle(s).Render(string(s))
}

// RenderPriority renders a priority marker, or a muted dash when unset.
func RenderPriority(p *types.Priority) string {
	if p == nil {
		return MutedStyle.Render("-")
	}
	switch *p {
	case types.PriorityCritical:
		return FailStyle.Render("critical")
	case types.PriorityHigh:
		return WarnStyle.Render("high")
	case types.PriorityMedium:
		return AccentStyle.Render("medium")
	default:
		return MutedStyle.Render("low")
	}
}

// Truncate shortens s to max runes with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// Indent prefixes every line of s with n copies of TreeIndent.
func Indent(s string, n int) string {
	prefix := strings.Repeat(TreeIndent, n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
