// Package ui formats text for the terminal.
//
// Each Formatter names what it formats rather than how it looks:
//
//	ui.Code.Sprint("huna init")
//	ui.Path.Sprint("email/work")
//	ui.Muted.Sprint(id)
//	ui.Branch.Sprint("email")
//
// With NO_COLOR set, or when fatih/color detects no color support, the
// formatters fall back to plain decorations: `backticks` for Code, 'quotes'
// for Highlight, (parentheses) for Muted and a trailing slash for Branch.
//
// Failure and Done render the "✗ message" and "✓ message" lines every
// command ends with.
package ui
