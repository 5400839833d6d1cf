package symbols

import (
	"fmt"
	"sort"
)

// RegisterTrait declares a trait. Declaring the same trait twice is an error.
func (s *SymbolTable) RegisterTrait(def TraitDef) error {
	if _, ok := s.traits[def.Name]; ok {
		return fmt.Errorf("trait %s declared twice", def.Name)
	}
	d := def
	s.traits[def.Name] = &d
	if def.LangItem != "" {
		s.langItems[def.LangItem] = def.Name
	}
	return nil
}

// TraitExists reports whether a trait has been declared.
func (s *SymbolTable) TraitExists(name string) bool {
	_, ok := s.traits[name]
	return ok
}

// Traits returns the declared traits sorted by name.
func (s *SymbolTable) Traits() []TraitDef {
	out := make([]TraitDef, 0, len(s.traits))
	for _, t := range s.traits {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LangItem returns the trait registered for a language-defined capability.
func (s *SymbolTable) LangItem(item string) (string, bool) {
	name, ok := s.langItems[item]
	return name, ok
}
