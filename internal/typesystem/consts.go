package typesystem

import "fmt"

// Constants appear as generic arguments next to types, so every constant
// shape implements Type. IsConst separates the two families. Printed forms
// carry a "const" prefix so they parse back unambiguously.

// ConstValue is an evaluated constant with its stored type.
type ConstValue struct {
	Value string
	Ty    Type
}

func (c ConstValue) String() string {
	if c.Ty == nil {
		return "const " + c.Value
	}
	return fmt.Sprintf("const %s: %s", c.Value, c.Ty)
}

func (c ConstValue) Apply(s Subst) Type { return ApplyWithCycleCheck(c, s, make(map[string]bool)) }

func (c ConstValue) FreeTypeVariables() []TVar {
	if c.Ty == nil {
		return nil
	}
	return c.Ty.FreeTypeVariables()
}

// ConstParam is a const generic parameter (e.g. N in [T; N]).
type ConstParam struct {
	Name  string
	Index int
}

func (c ConstParam) String() string { return "const " + c.Name }

func (c ConstParam) Apply(Subst) Type { return c }

func (c ConstParam) FreeTypeVariables() []TVar { return nil }

// ConstUnevaluated refers to a constant item applied to generic arguments
// that has not been evaluated yet.
type ConstUnevaluated struct {
	Def  string
	Args []Type
}

func (c ConstUnevaluated) String() string {
	if len(c.Args) == 0 {
		return fmt.Sprintf("const {%s}", c.Def)
	}
	return fmt.Sprintf("const {%s}<%s>", c.Def, joinTypes(c.Args))
}

func (c ConstUnevaluated) Apply(s Subst) Type { return ApplyWithCycleCheck(c, s, make(map[string]bool)) }

func (c ConstUnevaluated) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, arg := range c.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// ConstInfer is a constant inference variable.
type ConstInfer struct {
	Name string
}

func (c ConstInfer) String() string { return "const " + c.Name }

func (c ConstInfer) Apply(s Subst) Type { return ApplyWithCycleCheck(c, s, make(map[string]bool)) }

func (c ConstInfer) FreeTypeVariables() []TVar { return []TVar{{Name: c.Name}} }

// ConstError is the constant produced after an earlier error was reported.
type ConstError struct{}

func (ConstError) String() string { return "const {error}" }

func (c ConstError) Apply(Subst) Type { return c }

func (ConstError) FreeTypeVariables() []TVar { return nil }

// IsConst reports whether t is one of the constant shapes.
func IsConst(t Type) bool {
	switch t.(type) {
	case ConstValue, ConstParam, ConstUnevaluated, ConstInfer, ConstError:
		return true
	}
	return false
}
