package traits

import (
	"fmt"
	"strings"
)

// CauseCode explains why an obligation exists. Derived codes wrap the code
// of the obligation they were derived from, forming a chain that ends in a
// root code.
type CauseCode interface {
	String() string
	// Parent returns the wrapped code for derived links.
	Parent() (CauseCode, bool)
}

// MiscCode is the root code for obligations with no particular origin.
type MiscCode struct{}

func (MiscCode) String() string            { return "misc" }
func (MiscCode) Parent() (CauseCode, bool) { return nil, false }

// ItemObligationCode is a root code for a requirement imposed by an item's
// declared bounds at a use site.
type ItemObligationCode struct {
	Def  string
	Span Span
}

func (c ItemObligationCode) String() string {
	return fmt.Sprintf("required by a bound in `%s` at %s", c.Def, c.Span)
}
func (ItemObligationCode) Parent() (CauseCode, bool) { return nil, false }

// WellFormedCode is a root code for well-formedness requirements.
type WellFormedCode struct {
	Arg string
}

func (c WellFormedCode) String() string          { return fmt.Sprintf("well-formedness of `%s`", c.Arg) }
func (WellFormedCode) Parent() (CauseCode, bool) { return nil, false }

// WhereClauseCode records a requirement that comes from a declared bound of
// a type constructor while checking well-formedness.
type WhereClauseCode struct {
	Def        string
	Index      int
	Span       Span
	ParentCode CauseCode
}

func (c *WhereClauseCode) String() string {
	return fmt.Sprintf("required by bound #%d of `%s` at %s", c.Index, c.Def, c.Span)
}

// DerivedCause is the shared part of every trait-derived link.
type DerivedCause struct {
	ParentTraitPred Predicate
	ParentCode      CauseCode
}

// DerivedHostCause is the shared part of every host-effect-derived link.
type DerivedHostCause struct {
	ParentHostPred Predicate
	ParentCode     CauseCode
}

// ImplDerivedCode records that an obligation was introduced by the
// declared requirement at PredicateIndex of a user impl.
type ImplDerivedCode struct {
	Derived        DerivedCause
	ImplID         string
	PredicateIndex int
	HasIndex       bool
	Span           Span
}

func (c *ImplDerivedCode) String() string {
	if c.HasIndex {
		return fmt.Sprintf("required for `%s` by requirement #%d of impl `%s` at %s",
			c.Derived.ParentTraitPred, c.PredicateIndex, c.ImplID, c.Span)
	}
	return fmt.Sprintf("required for `%s` by impl `%s` at %s", c.Derived.ParentTraitPred, c.ImplID, c.Span)
}

// BuiltinDerivedCode records that an obligation was introduced by a
// language-defined rule.
type BuiltinDerivedCode struct {
	Derived DerivedCause
}

func (c *BuiltinDerivedCode) String() string {
	return fmt.Sprintf("required for `%s` by a builtin rule", c.Derived.ParentTraitPred)
}

// ImplDerivedHostCode is ImplDerivedCode for host-effect predicates.
type ImplDerivedHostCode struct {
	Derived DerivedHostCause
	ImplID  string
	Span    Span
}

func (c *ImplDerivedHostCode) String() string {
	return fmt.Sprintf("required for `%s` by impl `%s` at %s", c.Derived.ParentHostPred, c.ImplID, c.Span)
}

// BuiltinDerivedHostCode is BuiltinDerivedCode for host-effect predicates.
type BuiltinDerivedHostCode struct {
	Derived DerivedHostCause
}

func (c *BuiltinDerivedHostCode) String() string {
	return fmt.Sprintf("required for `%s` by a builtin rule", c.Derived.ParentHostPred)
}

// Parent of a where-clause code is the code of the well-formedness goal.
func (c *WhereClauseCode) Parent() (CauseCode, bool) { return c.ParentCode, c.ParentCode != nil }

func (c *ImplDerivedCode) Parent() (CauseCode, bool) { return c.Derived.ParentCode, true }

func (c *BuiltinDerivedCode) Parent() (CauseCode, bool) { return c.Derived.ParentCode, true }

func (c *ImplDerivedHostCode) Parent() (CauseCode, bool) { return c.Derived.ParentCode, true }

func (c *BuiltinDerivedHostCode) Parent() (CauseCode, bool) { return c.Derived.ParentCode, true }

// IsDerived reports whether code is one of the impl/builtin derived links.
func IsDerived(code CauseCode) bool {
	switch code.(type) {
	case *ImplDerivedCode, *BuiltinDerivedCode, *ImplDerivedHostCode, *BuiltinDerivedHostCode:
		return true
	}
	return false
}

// Cause is the attribution trail of an obligation.
type Cause struct {
	Span   Span
	BodyID string
	Code   CauseCode
}

// NewCause builds a root cause.
func NewCause(span Span, bodyID string, code CauseCode) Cause {
	if code == nil {
		code = MiscCode{}
	}
	return Cause{Span: span, BodyID: bodyID, Code: code}
}

// DerivedCause wraps this cause's code in a link produced by mk.
func (c Cause) DerivedCause(parentTraitPred Predicate, mk func(DerivedCause) CauseCode) Cause {
	derived := DerivedCause{ParentTraitPred: parentTraitPred, ParentCode: c.code()}
	return Cause{Span: c.Span, BodyID: c.BodyID, Code: mk(derived)}
}

// DerivedHostCause wraps this cause's code in a host-effect link produced by mk.
func (c Cause) DerivedHostCause(parentHostPred Predicate, mk func(DerivedHostCause) CauseCode) Cause {
	derived := DerivedHostCause{ParentHostPred: parentHostPred, ParentCode: c.code()}
	return Cause{Span: c.Span, BodyID: c.BodyID, Code: mk(derived)}
}

// WithCode replaces the code, keeping span and body.
func (c Cause) WithCode(code CauseCode) Cause {
	return Cause{Span: c.Span, BodyID: c.BodyID, Code: code}
}

func (c Cause) code() CauseCode {
	if c.Code == nil {
		return MiscCode{}
	}
	return c.Code
}

// Chain returns the codes from the outermost link down to the root.
func (c Cause) Chain() []CauseCode {
	var chain []CauseCode
	code := c.code()
	for code != nil {
		chain = append(chain, code)
		parent, ok := code.Parent()
		if !ok {
			break
		}
		code = parent
	}
	return chain
}

// DerivedDepth counts the impl/builtin derived links in the chain.
func (c Cause) DerivedDepth() int {
	n := 0
	for _, code := range c.Chain() {
		if IsDerived(code) {
			n++
		}
	}
	return n
}

// Root returns the innermost code of the chain.
func (c Cause) Root() CauseCode {
	chain := c.Chain()
	return chain[len(chain)-1]
}

func (c Cause) String() string {
	chain := c.Chain()
	parts := make([]string, len(chain))
	for i, code := range chain {
		parts[i] = code.String()
	}
	return fmt.Sprintf("%s [%s]", c.Span, strings.Join(parts, " <- "))
}
