// Package errors defines the diagnostic type shared by the scanner, parser,
// translator, and compatibility checker.
//
// The central type is [Error]. A [List] accumulates errors across a
// compilation; it sorts by position and is rendered as text via Error. The
// package has no machine-readable (e.g. JSON) serialization.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"weftlang.dev/weft/token"
)

// Severity classifies a diagnostic. Only Error severity causes a
// compilation to fail; Warning and Info are informational.
type Severity int

const (
	ErrorSeverity Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case ErrorSeverity:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Code identifies the class of a diagnostic, stable across releases so that
// tooling can filter or suppress specific findings.
type Code string

const (
	CodeLex       Code = "lex"
	CodeParse     Code = "parse"
	CodeResolve   Code = "resolve"
	CodeName      Code = "name"
	CodeType      Code = "type"
	CodeAttribute Code = "attribute"
	CodeCompat    Code = "compat"
)

// Error is one diagnostic: a severity-tagged message anchored at a primary
// span, with optional secondary spans (e.g. the other declaration in a
// duplicate-name error) and free-form notes.
type Error struct {
	Severity      Severity
	Code          Code
	Message       string
	Primary       token.Pos
	PrimaryEnd    token.Pos
	Secondary     []token.Pos
	SecondaryEnds []token.Pos
	Notes         []string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Primary, e.Severity, e.Message)
	for _, n := range e.Notes {
		fmt.Fprintf(&b, "\n\t%s", n)
	}
	return b.String()
}

// Newf creates an Error-severity diagnostic at pos.
func Newf(pos token.Pos, code Code, format string, args ...interface{}) *Error {
	return &Error{Severity: ErrorSeverity, Code: code, Message: fmt.Sprintf(format, args...), Primary: pos}
}

// Warnf creates a Warning-severity diagnostic at pos.
func Warnf(pos token.Pos, code Code, format string, args ...interface{}) *Error {
	return &Error{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Primary: pos}
}

// WithSecondary returns e annotated with an additional related span, such as
// the location of an earlier conflicting declaration.
func (e *Error) WithSecondary(pos token.Pos, note string) *Error {
	e.Secondary = append(e.Secondary, pos)
	if note != "" {
		e.Notes = append(e.Notes, note)
	}
	return e
}

// List is an append-only collection of diagnostics. Once sorted, a List must
// not be mutated in place by anything other than Add, matching the
// append-only discipline described for compilation diagnostics: findings are
// never edited after being emitted.
type List []*Error

// Add appends err to the list. A nil err is ignored so that callers can
// write `list.Add(maybeErr())` without a nil check.
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	*l = append(*l, err)
}

// AddAll appends every error in other to l.
func (l *List) AddAll(other List) {
	*l = append(*l, other...)
}

// HasErrors reports whether the list contains any Error-severity diagnostic.
func (l List) HasErrors() bool {
	for _, e := range l {
		if e.Severity == ErrorSeverity {
			return true
		}
	}
	return false
}

// Sort orders the list by (file, start offset). The sort is stable so diagnostics
// emitted at the same position keep their relative emission order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Primary.Compare(l[j].Primary) < 0
	})
}

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
