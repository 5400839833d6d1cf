// Package scenario loads recorded solver runs from YAML.
//
// A scenario file describes the declarations the diagnostic pass queries
// (traits, impls, constant items, type bounds), the environment, the proof
// trees the solver recorded and the root obligations to report:
//
//	traits:
//	  - name: Clone
//	impls:
//	  - id: clone_vec
//	    trait: Clone
//	    generics: [T]
//	    types: ["Vec<T>"]
//	    predicates:
//	      - predicate: {trait: "T: Clone"}
//	        span: lib.rs:3:12
//	traces:
//	  - goal: {trait: "Vec<Foo>: Clone"}
//	    result: no_solution
//	    candidates:
//	      - source: impl
//	        impl: clone_vec
//	        result: no_solution
//	        nested:
//	          - source: impl_where_bound
//	            goal: {trait: "Foo: Clone"}
//	            result: no_solution
//	obligations:
//	  - name: clone-vec
//	    mode: error
//	    predicate: {trait: "Vec<Foo>: Clone"}
//	    span: main.rs:10:5
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownGoal is returned when a root obligation has no recorded trace.
var ErrUnknownGoal = errors.New("no recorded trace for goal")

// Scenario is one recorded solver run.
type Scenario struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`

	Traits     []TraitSpec      `yaml:"traits,omitempty"`
	Impls      []ImplSpec       `yaml:"impls,omitempty"`
	Consts     []ConstSpec      `yaml:"consts,omitempty"`
	TypeBounds []TypeBoundsSpec `yaml:"type_bounds,omitempty"`

	// Env is the environment every goal of the run is proven in.
	Env []PredicateSpec `yaml:"env,omitempty"`

	Traces      []TraceSpec      `yaml:"traces,omitempty"`
	Obligations []ObligationSpec `yaml:"obligations"`
}

// TraitSpec declares a trait. LangItem marks it as a language-defined
// capability such as fn_ptr_trait.
type TraitSpec struct {
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params,omitempty"`
	LangItem string   `yaml:"lang_item,omitempty"`
}

// ImplSpec declares an impl block.
type ImplSpec struct {
	ID       string   `yaml:"id"`
	Trait    string   `yaml:"trait"`
	Generics []string `yaml:"generics,omitempty"`
	// Types are the trait's arguments, Self first.
	Types           []string            `yaml:"types"`
	Predicates      []SpannedPredicate  `yaml:"predicates,omitempty"`
	ConstConditions []ConstConditionSpec `yaml:"const_conditions,omitempty"`
	DoNotRecommend  bool                `yaml:"do_not_recommend,omitempty"`
	Span            string              `yaml:"span,omitempty"`
}

// SpannedPredicate is a declared requirement with its location.
type SpannedPredicate struct {
	Predicate PredicateSpec `yaml:"predicate"`
	Span      string        `yaml:"span,omitempty"`
}

// ConstConditionSpec is a const condition written as "Self: Trait<Args>".
type ConstConditionSpec struct {
	TraitRef string `yaml:"trait_ref"`
	Span     string `yaml:"span,omitempty"`
}

// ConstSpec declares a constant item.
type ConstSpec struct {
	ID       string   `yaml:"id"`
	Generics []string `yaml:"generics,omitempty"`
	Type     string   `yaml:"type"`
}

// TypeBoundsSpec declares the bounds of a type constructor.
type TypeBoundsSpec struct {
	Name     string             `yaml:"name"`
	Generics []string           `yaml:"generics,omitempty"`
	Clauses  []SpannedPredicate `yaml:"clauses,omitempty"`
}

// TraceSpec is a recorded proof tree.
type TraceSpec struct {
	Goal       PredicateSpec   `yaml:"goal"`
	Result     string          `yaml:"result"`
	Candidates []CandidateSpec `yaml:"candidates,omitempty"`
}

// CandidateSpec is one recorded candidate. Probe defaults to
// trait_candidate; Source and Impl only apply to trait candidates.
type CandidateSpec struct {
	Probe       string         `yaml:"probe,omitempty"`
	Source      string         `yaml:"source,omitempty"`
	Impl        string         `yaml:"impl,omitempty"`
	Result      string         `yaml:"result"`
	Constraints []EquateSpec   `yaml:"constraints,omitempty"`
	Nested      []NestedSpec   `yaml:"nested,omitempty"`
}

// EquateSpec is an inference constraint made by a candidate.
type EquateSpec struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// NestedSpec is a nested goal of a candidate. Trace optionally inlines the
// nested goal's own proof tree; its goal defaults to the nested goal.
type NestedSpec struct {
	Source string        `yaml:"source,omitempty"`
	Goal   PredicateSpec `yaml:"goal"`
	Result string        `yaml:"result"`
	Trace  *TraceSpec    `yaml:"trace,omitempty"`
}

// ObligationSpec is a root obligation the fulfillment loop gave up on.
type ObligationSpec struct {
	Name      string        `yaml:"name,omitempty"`
	Mode      string        `yaml:"mode"`
	Predicate PredicateSpec `yaml:"predicate"`
	Span      string        `yaml:"span,omitempty"`
	Body      string        `yaml:"body,omitempty"`
	// Item, when set, roots the cause in the bounds of that item.
	Item string `yaml:"item,omitempty"`
}

// Parse decodes scenario data. filename is only used in errors.
func Parse(data []byte, filename string) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &s, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data, path)
}

// Marshal encodes the scenario back to YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
