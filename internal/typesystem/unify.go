package typesystem

import "fmt"

// Unify attempts to find a substitution that makes t1 and t2 equal.
// It enforces strict equality (invariant); only inference variables bind.
func Unify(t1, t2 Type) (Subst, error) {
	if Equal(t1, t2) {
		return Subst{}, nil
	}

	switch a := t1.(type) {
	case TVar:
		return Bind(a, t2)
	case ConstInfer:
		return Bind(TVar{Name: a.Name}, t2)
	}
	switch b := t2.(type) {
	case TVar:
		return Bind(b, t1)
	case ConstInfer:
		return Bind(TVar{Name: b.Name}, t1)
	}

	switch a := t1.(type) {
	case TApp:
		b, ok := t2.(TApp)
		if !ok {
			return nil, errUnify(t1, t2)
		}
		s, err := Unify(a.Constructor, b.Constructor)
		if err != nil {
			return nil, err
		}
		return unifyLists(s, a.Args, b.Args, t1, t2)

	case TFunc:
		b, ok := t2.(TFunc)
		if !ok {
			return nil, errUnify(t1, t2)
		}
		s, err := unifyLists(Subst{}, a.Params, b.Params, t1, t2)
		if err != nil {
			return nil, err
		}
		if (a.ReturnType == nil) != (b.ReturnType == nil) {
			return nil, errUnifyMsg(t1, t2, "return type mismatch")
		}
		if a.ReturnType == nil {
			return s, nil
		}
		s2, err := Unify(a.ReturnType.Apply(s), b.ReturnType.Apply(s))
		if err != nil {
			return nil, errUnifyContext("return type", err)
		}
		return s2.Compose(s), nil

	case TAlias:
		b, ok := t2.(TAlias)
		if !ok || a.Kind != b.Kind || a.Trait != b.Trait || a.Item != b.Item {
			return nil, errUnify(t1, t2)
		}
		return unifyLists(Subst{}, a.Args, b.Args, t1, t2)

	case ConstUnevaluated:
		b, ok := t2.(ConstUnevaluated)
		if !ok || a.Def != b.Def {
			return nil, errUnify(t1, t2)
		}
		return unifyLists(Subst{}, a.Args, b.Args, t1, t2)

	case TCon, TPlaceholder, ConstValue, ConstParam, ConstError:
		// Equal nominal shapes were handled above.
		return nil, errUnify(t1, t2)

	default:
		return nil, errMismatch(fmt.Sprintf("unknown type kind: %T", t1))
	}
}

func unifyLists(s Subst, as, bs []Type, t1, t2 Type) (Subst, error) {
	if len(as) != len(bs) {
		return nil, errUnifyMsg(t1, t2, "argument count mismatch")
	}
	for i := range as {
		s2, err := Unify(as[i].Apply(s), bs[i].Apply(s))
		if err != nil {
			return nil, errUnifyContext(fmt.Sprintf("argument %d", i), err)
		}
		s = s2.Compose(s)
	}
	return s, nil
}

// Bind binds a type variable to a type, performing the occurs check.
func Bind(tv TVar, t Type) (Subst, error) {
	// If t is the same variable, return empty substitution
	if t.String() == tv.Name {
		return Subst{}, nil
	}

	// Occurs check: ensure tv does not appear in t (to avoid infinite types like a = List a)
	if OccursCheck(tv, t) {
		return nil, errMismatch(fmt.Sprintf("infinite type detected: %s in %s", tv, t))
	}

	return Subst{tv.Name: t}, nil
}

// OccursCheck returns true if tv appears free in t.
func OccursCheck(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.Name == tv.Name {
			return true
		}
	}
	return false
}

func errUnify(t1, t2 Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func errUnifyMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}

func errUnifyContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
