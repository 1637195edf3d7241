package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout starcat's CLI output.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

var (
	okIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	errIcon  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("✗")
	warnIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("⚠")
	skipIcon = lipgloss.NewStyle().Faint(true).Render("○")
	missIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render("-")
	infoIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("~")

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

// printSection prints a top-level section header, e.g. "=== Update ===".
func printSection(title string) {
	fmt.Printf("\n%s\n", sectionStyle.Render("=== "+title+" ==="))
}

// printLine prints "  <icon>  msg" or "  <icon>  [name] msg".
func printLine(w *os.File, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
func printOK(name, msg string) { printLine(os.Stdout, okIcon, name, msg) }

// printErr prints an error line to stderr.
func printErr(name, msg string) { printLine(os.Stderr, errIcon, name, msg) }

// printWarn prints a warning line.
func printWarn(name, msg string) { printLine(os.Stdout, warnIcon, name, msg) }

// printSkip prints a skipped / not-applicable line.
func printSkip(name, msg string) { printLine(os.Stdout, skipIcon, name, msg) }

// printMiss prints a not-found / missing line.
func printMiss(name, msg string) { printLine(os.Stdout, missIcon, name, msg) }

// printInfo prints a neutral informational / state-change line.
func printInfo(name, msg string) { printLine(os.Stdout, infoIcon, name, msg) }
