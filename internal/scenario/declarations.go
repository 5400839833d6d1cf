package scenario

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/symbols"
)

// Declarations are the items a scenario (or the catalog) contributes to a
// symbol table.
type Declarations struct {
	Traits     []symbols.TraitDef
	Impls      []symbols.ImplDef
	Consts     []symbols.ConstDef
	TypeBounds []symbols.TypeBounds
}

// Merge appends other's declarations to d. Items d already declares under
// the same name keep d's version.
func (d *Declarations) Merge(other *Declarations) {
	traits := make(map[string]bool, len(d.Traits))
	for _, t := range d.Traits {
		traits[t.Name] = true
	}
	for _, t := range other.Traits {
		if !traits[t.Name] {
			d.Traits = append(d.Traits, t)
		}
	}

	impls := make(map[string]bool, len(d.Impls))
	for _, impl := range d.Impls {
		impls[impl.ID] = true
	}
	for _, impl := range other.Impls {
		if !impls[impl.ID] {
			d.Impls = append(d.Impls, impl)
		}
	}

	consts := make(map[string]bool, len(d.Consts))
	for _, c := range d.Consts {
		consts[c.ID] = true
	}
	for _, c := range other.Consts {
		if !consts[c.ID] {
			d.Consts = append(d.Consts, c)
		}
	}

	bounds := make(map[string]bool, len(d.TypeBounds))
	for _, b := range d.TypeBounds {
		bounds[b.Name] = true
	}
	for _, b := range other.TypeBounds {
		if !bounds[b.Name] {
			d.TypeBounds = append(d.TypeBounds, b)
		}
	}
}

// Register adds every declaration to table. Traits go first so impls can
// refer to them.
func (d *Declarations) Register(table *symbols.SymbolTable) error {
	for _, t := range d.Traits {
		if err := table.RegisterTrait(t); err != nil {
			return err
		}
	}
	for _, impl := range d.Impls {
		if err := table.RegisterImplementation(impl); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}
	for _, c := range d.Consts {
		if err := table.RegisterConst(c); err != nil {
			return err
		}
	}
	for _, b := range d.TypeBounds {
		if err := table.RegisterTypeBounds(b); err != nil {
			return err
		}
	}
	return nil
}
