// Package report renders records as console text.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
)

const (
	rule       = "----------------------------------------"
	timeLayout = "2006-01-02 15:04:05"
)

// Field is one labelled line of a record block. Fields with an empty value are
// not printed.
type Field struct {
	Name  string
	Value string
}

// Printer writes report lines to w.
type Printer struct {
	w   io.Writer
	now func() time.Time
}

// New returns a printer. now is used for relative times; nil means time.Now.
func New(w io.Writer, now func() time.Time) *Printer {
	if now == nil {
		now = time.Now
	}
	return &Printer{w: w, now: now}
}

// Section starts a titled listing.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "\n--- %s ---\n", title)
}

// Info reports a successful operation.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "\n> "+format+"\n", args...)
}

// Warn reports an operation that was refused without being an error.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintf(p.w, "\nWarning: "+format+"\n", args...)
}

// Error reports a failed operation.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.w, "\nError: "+format+"\n", args...)
}

// Line writes one plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Rule writes a horizontal separator.
func (p *Printer) Rule() {
	fmt.Fprintln(p.w, rule)
}

// Block writes a separator followed by the non-empty fields.
func (p *Printer) Block(fields ...Field) {
	p.Rule()
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(p.w, "  %s: %s\n", f.Name, f.Value)
	}
}

// Failure prints err as an error line for missing records and as a warning
// for refused changes.
func (p *Printer) Failure(err error) {
	msg := err.Error()
	if hints := ierr.HintsFromErr(err); len(hints) > 0 {
		msg = hints[0]
	}
	switch {
	case ierr.IsNotFound(err):
		p.Error("%s.", msg)
	case ierr.IsInvalidTransition(err), ierr.IsAlreadyExists(err):
		p.Warn("%s.", msg)
	default:
		p.Error("%s", err)
	}
}

// When formats t with its distance from now, e.g. "2025-10-20 10:00:00 (3 minutes ago)".
func (p *Printer) When(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format(timeLayout), humanize.RelTime(t, p.now(), "ago", "from now"))
}

// Time formats t without the relative part, for dates that are part of the
// record itself rather than its history.
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

// OptionalWhen is When for an absent-or-present timestamp.
func (p *Printer) OptionalWhen(t *time.Time) string {
	if t == nil {
		return ""
	}
	return p.When(*t)
}

// Optional dereferences s, rendering absence as "".
func Optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
