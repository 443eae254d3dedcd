package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - errors
	colorCyan  = lipgloss.Color("36")  // Teal - highlighted values
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	styleError     = lipgloss.NewStyle().Foreground(colorRed)
	styleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
)

// printSuccess prints a green check line.
func printSuccess(format string, args ...any) {
	fmt.Println(styleSuccess.Render("✓ " + fmt.Sprintf(format, args...)))
}

// printError prints a red cross line.
func printError(format string, args ...any) {
	fmt.Println(styleError.Render("✗ " + fmt.Sprintf(format, args...)))
}

// printInfo prints a plain status line.
func printInfo(format string, args ...any) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// printDetail prints a dimmed secondary line.
func printDetail(format string, args ...any) {
	fmt.Println(styleDim.Render("  " + fmt.Sprintf(format, args...)))
}

// highlight renders a value in the accent color.
func highlight(v any) string {
	return styleHighlight.Render(fmt.Sprint(v))
}
