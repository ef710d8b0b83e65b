// Package diag holds the diagnostic data model shared by the parser and
// type checker. Diagnostics are plain data until the driver converts a
// non-empty list into a compile failure.
package diag

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/internal/compiler/token"
)

// MaxDiagnostics caps how many diagnostics a single compilation collects.
const MaxDiagnostics = 50

// Diagnostic is one user-facing error: a position, a one-line message and
// an optional one-line suggestion.
type Diagnostic struct {
	Pos  token.Pos
	Msg  string
	Hint string
}

func (d Diagnostic) String() string {
	if d.Hint != "" {
		return fmt.Sprintf("%s: %s\n  hint: %s", d.Pos, d.Msg, d.Hint)
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
}

// List accumulates diagnostics up to MaxDiagnostics.
type List struct {
	diags   []Diagnostic
	dropped int
}

// Add appends d unless the cap is reached, in which case it is counted
// but not stored.
func (l *List) Add(d Diagnostic) {
	if len(l.diags) >= MaxDiagnostics {
		l.dropped++
		return
	}
	l.diags = append(l.diags, d)
}

// Errorf records a diagnostic with no hint.
func (l *List) Errorf(pos token.Pos, format string, args ...any) {
	l.Add(Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// ErrorfHint records a diagnostic with a suggestion line.
func (l *List) ErrorfHint(pos token.Pos, hint, format string, args ...any) {
	l.Add(Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...), Hint: hint})
}

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool {
	return len(l.diags) > 0 || l.dropped > 0
}

// Len returns the number of stored diagnostics.
func (l *List) Len() int { return len(l.diags) }

// Full reports whether the cap has been reached; callers may stop early.
func (l *List) Full() bool { return len(l.diags) >= MaxDiagnostics }

// All returns the stored diagnostics in the order they were recorded.
func (l *List) All() []Diagnostic { return l.diags }

// Render formats every diagnostic prefixed with the source path, one per
// line, for writing to stderr.
func (l *List) Render(path string) string {
	var b strings.Builder
	for _, d := range l.diags {
		fmt.Fprintf(&b, "%s:%s\n", path, d.String())
	}
	if l.dropped > 0 {
		fmt.Fprintf(&b, "%s: too many errors, %d not shown\n", path, l.dropped)
	}
	return b.String()
}
