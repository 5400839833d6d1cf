// symbols/symbol_table.go - Declaration table entry point
//
// The table is split into focused files:
// - symbol_table_core.go: SymbolTable struct, declaration records, constructors
// - symbol_table_implementations.go: impl registration, where-clauses, const conditions
// - symbol_table_traits.go: trait declarations and lang items
// - symbol_table_defs.go: declared types of constant items and type-constructor bounds

package symbols
