// Package output provides console output formatting and colorization for
// cmd/depcollect. Grounded on cmd/gonuget/output/colors.go and console.go.
package output

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	ColorSuccess = color.New(color.FgGreen)
	ColorError   = color.New(color.FgRed)
	ColorWarning = color.New(color.FgYellow)
	ColorInfo    = color.New(color.FgCyan)
	ColorDebug   = color.New(color.FgWhite)
	ColorHeader  = color.New(color.Bold, color.FgWhite)
)

// IsColorEnabled reports whether color output should be used: stdout must be
// a terminal, NO_COLOR must be unset, and TERM must not be "dumb"/empty.
func IsColorEnabled() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	t := os.Getenv("TERM")
	if t == "dumb" || t == "" {
		return false
	}
	return true
}

func DisableColors() { color.NoColor = true }
func EnableColors()  { color.NoColor = false }
