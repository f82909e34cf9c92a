package ui

import (
	"fmt"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Width(12)
)

// FormatError returns a styled multi-line error message.
func FormatError(title, detail, suggestion string) string {
	out := errorStyle.Render("Error: "+title) + "\n"
	if detail != "" {
		out += "  " + detail + "\n"
	}
	if suggestion != "" {
		out += "  " + hintStyle.Render("Hint: "+suggestion) + "\n"
	}
	return out
}

// StepDone prints a styled status for a created container.
func StepDone(name, node, detail string) {
	msg := successStyle.Render("  OK ") + " " + name + " " + dimStyle.Render("→ "+node)
	if detail != "" {
		msg += " " + dimStyle.Render(detail)
	}
	fmt.Println(msg)
}

// StepFailed prints a red status for a failed container creation.
func StepFailed(name, node string) {
	fmt.Printf("  %s %s %s\n", errorStyle.Render("ERR"), name, dimStyle.Render("→ "+node))
}

// StepSkipped prints a dim status for a step that never ran.
func StepSkipped(name, node string) {
	fmt.Printf("  %s %s %s\n", dimStyle.Render("---"), name, dimStyle.Render("→ "+node+" (skipped)"))
}

// Success prints a green success message.
func Success(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// Warn prints a yellow warning message.
func Warn(msg string) {
	fmt.Println(warnStyle.Render("Warning: " + msg))
}

// Bold renders text in bold.
func Bold(s string) string {
	return boldStyle.Render(s)
}

// Hint renders text in dim italic.
func Hint(s string) string {
	return hintStyle.Render(s)
}

// Dim renders text in grey.
func Dim(s string) string {
	return dimStyle.Render(s)
}

// ValidationOK prints a green check for a valid field.
func ValidationOK(field, detail string) {
	fmt.Printf("  %s %s: %s\n", successStyle.Render("OK "), field, detail)
}

// ValidationErr prints a red error for an invalid field.
func ValidationErr(field, message, suggestion string) {
	fmt.Printf("  %s %s: %s\n", errorStyle.Render("ERR"), field, message)
	if suggestion != "" {
		fmt.Printf("      %s\n", hintStyle.Render("Hint: "+suggestion))
	}
}

// ValidationWarn prints a yellow notice for a questionable field.
func ValidationWarn(field, message string) {
	fmt.Printf("  %s %s: %s\n", warnStyle.Render("WRN"), field, message)
}

// Params prints a parameter set as an indented key/value block. Passwords
// are masked.
func Params(p model.Params) {
	for _, kv := range p {
		value := model.FormValue(kv.Value)
		switch {
		case kv.Value == nil:
			value = dimStyle.Render("(unset)")
		case kv.Key == "password":
			value = strings.Repeat("*", 8)
		}
		fmt.Printf("    %s %s\n", keyStyle.Render(kv.Key), value)
	}
}

// Field prints one labelled value.
func Field(key, value string) {
	fmt.Printf("    %s %s\n", keyStyle.Render(key), value)
}
