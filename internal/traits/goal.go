package traits

import "strings"

// Env is the set of facts assumed to hold while proving a goal.
type Env struct {
	Clauses []Predicate
}

func (e Env) String() string {
	if len(e.Clauses) == 0 {
		return "[]"
	}
	parts := make([]string, len(e.Clauses))
	for i, c := range e.Clauses {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

// Goal is a predicate to prove under an environment.
type Goal struct {
	Predicate Predicate
	Env       Env
}

// With returns a goal in the same environment for another predicate.
func (g Goal) With(kind PredicateKind) Goal {
	return Goal{Predicate: NewPredicate(kind), Env: g.Env}
}

func (g Goal) String() string {
	return g.Predicate.String()
}
