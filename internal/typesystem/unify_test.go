package typesystem

import "testing"

func TestUnify(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		want    map[string]string
		wantErr bool
	}{
		{name: "identical", a: "Vec<u8>", b: "Vec<u8>", want: map[string]string{}},
		{name: "bind var", a: "?0", b: "Foo", want: map[string]string{"?0": "Foo"}},
		{name: "bind var right", a: "Vec<u8>", b: "?1", want: map[string]string{"?1": "Vec<u8>"}},
		{name: "inside app", a: "Vec<?0>", b: "Vec<Foo>", want: map[string]string{"?0": "Foo"}},
		{name: "two args", a: "Pair<?0, ?1>", b: "Pair<u8, u16>", want: map[string]string{"?0": "u8", "?1": "u16"}},
		{name: "fn", a: "fn(?0) -> ?1", b: "fn(u8) -> bool", want: map[string]string{"?0": "u8", "?1": "bool"}},
		{name: "projection", a: "<?0 as Iterator>::Item", b: "<Foo as Iterator>::Item", want: map[string]string{"?0": "Foo"}},
		{name: "const infer", a: "Array<u8, const ?c0>", b: "Array<u8, const 3: usize>", want: map[string]string{"?c0": "const 3: usize"}},
		{name: "nominal mismatch", a: "Foo", b: "Bar", wantErr: true},
		{name: "arity mismatch", a: "Pair<u8>", b: "Pair<u8, u8>", wantErr: true},
		{name: "occurs check", a: "?0", b: "Vec<?0>", wantErr: true},
		{name: "different items", a: "<T as Tr>::A", b: "<T as Tr>::B", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Unify(MustParse(tt.a), MustParse(tt.b))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unify(%s, %s) should fail, got %v", tt.a, tt.b, s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unify(%s, %s) error: %v", tt.a, tt.b, err)
			}
			if len(s) != len(tt.want) {
				t.Fatalf("Unify(%s, %s) = %v, want %v", tt.a, tt.b, s, tt.want)
			}
			for k, v := range tt.want {
				if got, ok := s[k]; !ok || got.String() != v {
					t.Errorf("subst[%s] = %v, want %s", k, got, v)
				}
			}
		})
	}
}

func TestApplyBreaksCycles(t *testing.T) {
	s := Subst{"?0": MustParse("Vec<?1>"), "?1": MustParse("?0")}
	// Must terminate.
	got := MustParse("?0").Apply(s)
	if got == nil {
		t.Fatal("Apply returned nil")
	}
}

func TestSubstCompose(t *testing.T) {
	s1 := Subst{"?1": MustParse("u8")}
	s2 := Subst{"?0": MustParse("Vec<?1>")}
	composed := s1.Compose(s2)
	if got := MustParse("?0").Apply(composed).String(); got != "Vec<u8>" {
		t.Errorf("composed ?0 = %s, want Vec<u8>", got)
	}
}
