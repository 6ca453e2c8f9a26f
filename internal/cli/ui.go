package cli

import "github.com/charmbracelet/lipgloss"

// Palette shared by report.go and watch.go, the same ANSI-256 indices
// the teacher's ui.go uses.
var (
	colorCyan = lipgloss.Color("36")  // primary values
	colorGray = lipgloss.Color("245") // headers, secondary text
	colorDim  = lipgloss.Color("240") // borders, muted text
	colorRed  = lipgloss.Color("167") // errors, pruned branches
)
