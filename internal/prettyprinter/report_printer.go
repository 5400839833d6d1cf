package prettyprinter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/fulfill/internal/traits"
)

// ANSI escapes used in reports.
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
)

// ColorEnabled resolves a color mode (auto, always, never) for a file.
// Auto means colors only on a terminal that isn't dumb and when NO_COLOR
// is unset.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ReportPrinter renders fulfillment errors in a compiler-like layout.
type ReportPrinter struct {
	buf    bytes.Buffer
	indent int
	color  bool
	chain  bool
}

func NewReportPrinter(color, chain bool) *ReportPrinter {
	return &ReportPrinter{color: color, chain: chain}
}

func (p *ReportPrinter) String() string {
	return p.buf.String()
}

func (p *ReportPrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *ReportPrinter) style(s string, codes ...string) string {
	if !p.color || len(codes) == 0 {
		return s
	}
	var b bytes.Buffer
	for _, c := range codes {
		b.WriteString(c)
	}
	b.WriteString(s)
	b.WriteString(ansiReset)
	return b.String()
}

func (p *ReportPrinter) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// PrintError renders one error under a name.
func (p *ReportPrinter) PrintError(name string, e traits.FulfillmentError) {
	class, msg := Headline(e)
	p.line("%s %s", p.style(fmt.Sprintf("error[%s]:", class), ansiBold, ansiRed), p.style(msg, ansiBold))

	p.indent++
	arrow := p.style("-->", ansiBlue)
	p.line("%s %s (%s)", arrow, e.Obligation.Span(), name)
	if !e.Obligation.Equal(e.RootObligation) {
		p.line("%s while proving `%s`", p.style("=", ansiBlue), e.RootObligation.Predicate)
	}

	chain := e.Obligation.Cause.Chain()
	if !p.chain {
		chain = chain[:1]
	}
	for _, code := range chain {
		if _, ok := code.(traits.MiscCode); ok {
			continue
		}
		p.line("%s %s", p.style("note:", ansiCyan), code)
	}
	if amb, ok := e.Code.(traits.CodeAmbiguity); ok && amb.Overflow != nil && *amb.Overflow {
		p.line("%s consider increasing the recursion limit", p.style("help:", ansiCyan))
	}
	p.indent--
	p.buf.WriteByte('\n')
}

// Headline returns the error class and the main message.
func Headline(e traits.FulfillmentError) (string, string) {
	pred := e.Obligation.Predicate
	switch code := e.Code.(type) {
	case traits.CodeSelect:
		if wrong, ok := code.Err.(traits.ConstArgHasWrongType); ok {
			return "select", wrong.String()
		}
		return "select", fmt.Sprintf("the requirement `%s` is not satisfied", pred)
	case traits.CodeProject:
		return "project", fmt.Sprintf("type mismatch resolving `%s`", pred)
	case traits.CodeSubtype:
		return "subtype", fmt.Sprintf("mismatched types: %s", code.ExpectedFound)
	case traits.CodeAmbiguity:
		if code.Overflow != nil {
			return "overflow", fmt.Sprintf("overflow evaluating the requirement `%s`", pred)
		}
		return "ambiguity", fmt.Sprintf("type annotations needed: cannot satisfy `%s`", pred)
	}
	return "error", pred.String()
}
