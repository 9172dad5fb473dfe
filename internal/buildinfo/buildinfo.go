// Package buildinfo stamps compiled programs with a build id and renders
// CLI-facing summaries with ANSI color, gated on the output actually being
// a terminal. Grounded on funxy's internal/evaluator/builtins_term.go
// color-detection path (NO_COLOR convention, isatty.IsTerminal ||
// isatty.IsCygwinTerminal, memoized with sync.Once) and its use of
// github.com/google/uuid elsewhere in the pack for opaque correlation ids.
package buildinfo

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Stamp is the build id and chunk count the CLI's compile and cache
// subcommands print for a compiled Program. It is not stored in the
// cache or sent in RPC responses. It carries no compiler semantics;
// internal/compiler knows nothing of it.
type Stamp struct {
	BuildID   uuid.UUID
	NumChunks int
}

// New mints a fresh Stamp for a just-compiled program with numChunks chunks.
func New(numChunks int) Stamp {
	return Stamp{BuildID: uuid.New(), NumChunks: numChunks}
}

func (s Stamp) String() string {
	return fmt.Sprintf("build %s (%d chunks)", s.BuildID, s.NumChunks)
}

var (
	colorOnce    sync.Once
	colorEnabled bool
)

// ColorEnabled reports whether CLI output should carry ANSI color: off
// under NO_COLOR, off when stdout isn't a real terminal, on otherwise.
// Cached after the first call, as funxy's detectColorLevel does.
func ColorEnabled() bool {
	colorOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			colorEnabled = false
			return
		}
		fd := os.Stdout.Fd()
		colorEnabled = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	})
	return colorEnabled
}

func wrap(code, s string) string {
	if !ColorEnabled() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green renders s in green when color is enabled, used for a successful
// compile's CLI summary line.
func Green(s string) string { return wrap("32", s) }

// Red renders s in red when color is enabled, used for a failed compile's
// CLI summary line.
func Red(s string) string { return wrap("31", s) }

// Dim renders s dimmed when color is enabled, used for the build-id part
// of a compile summary line.
func Dim(s string) string { return wrap("2", s) }

// Report renders a one-line, optionally colorized compile summary for the
// CLI's compile/cache subcommands.
func Report(stamp Stamp, ok bool) string {
	status := Green("ok")
	if !ok {
		status = Red("failed")
	}
	return fmt.Sprintf("%s %s", status, Dim(stamp.String()))
}
