package traits

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/typesystem"
)

// ExpectedFound pairs the type a context wanted with the one it got.
type ExpectedFound struct {
	Expected typesystem.Type
	Found    typesystem.Type
}

func NewExpectedFound(expected, found typesystem.Type) ExpectedFound {
	return ExpectedFound{Expected: expected, Found: found}
}

func (e ExpectedFound) String() string {
	return fmt.Sprintf("expected `%s`, found `%s`", e.Expected, e.Found)
}

// TypeError is the payload of a type mismatch.
type TypeError interface {
	String() string
	typeError()
}

// TypeErrorMismatch is an unspecific mismatch.
type TypeErrorMismatch struct{}

func (TypeErrorMismatch) String() string { return "types differ" }
func (TypeErrorMismatch) typeError()     {}

// TypeErrorSorts is a mismatch between two concrete types.
type TypeErrorSorts struct {
	ExpectedFound ExpectedFound
}

func (e TypeErrorSorts) String() string { return e.ExpectedFound.String() }
func (TypeErrorSorts) typeError()       {}

// SelectionError explains why no impl could be selected.
type SelectionError interface {
	String() string
	selectionError()
}

// Unimplemented means the predicate is simply not implemented.
type Unimplemented struct{}

func (Unimplemented) String() string  { return "unimplemented" }
func (Unimplemented) selectionError() {}

// ConstArgHasWrongType reports a constant argument whose type does not match
// the type its parameter declares.
type ConstArgHasWrongType struct {
	Const      typesystem.Type
	ConstTy    typesystem.Type
	ExpectedTy typesystem.Type
}

func (e ConstArgHasWrongType) String() string {
	return fmt.Sprintf("constant `%s` has type `%s`, expected `%s`", e.Const, e.ConstTy, e.ExpectedTy)
}
func (ConstArgHasWrongType) selectionError() {}

// MismatchedProjectionTypes is the payload of a failed projection.
type MismatchedProjectionTypes struct {
	Err TypeError
}

// FulfillmentErrorCode is the closed set of reported error classes.
type FulfillmentErrorCode interface {
	String() string
	fulfillmentErrorCode()
}

// CodeSelect is a selection failure.
type CodeSelect struct {
	Err SelectionError
}

func (c CodeSelect) String() string      { return "select: " + c.Err.String() }
func (CodeSelect) fulfillmentErrorCode() {}

// CodeProject is a projection mismatch.
type CodeProject struct {
	Err MismatchedProjectionTypes
}

func (c CodeProject) String() string      { return "project: " + c.Err.Err.String() }
func (CodeProject) fulfillmentErrorCode() {}

// CodeSubtype is a subtyping (or coercion) mismatch.
type CodeSubtype struct {
	ExpectedFound ExpectedFound
	Err           TypeError
}

func (c CodeSubtype) String() string      { return "subtype: " + c.Err.String() }
func (CodeSubtype) fulfillmentErrorCode() {}

// CodeAmbiguity is an unresolved goal. Overflow is nil for genuine
// ambiguity; otherwise it holds whether to suggest raising the limit.
type CodeAmbiguity struct {
	Overflow *bool
}

func (c CodeAmbiguity) String() string {
	if c.Overflow == nil {
		return "ambiguity"
	}
	return fmt.Sprintf("ambiguity (overflow, suggest_increasing_limit=%t)", *c.Overflow)
}
func (CodeAmbiguity) fulfillmentErrorCode() {}

// FulfillmentError is the final diagnostic record for one root goal.
type FulfillmentError struct {
	Obligation     Obligation
	Code           FulfillmentErrorCode
	RootObligation Obligation
}

func (e FulfillmentError) String() string {
	return fmt.Sprintf("%s: %s (root: %s)", e.Obligation.Predicate, e.Code, e.RootObligation.Predicate)
}
