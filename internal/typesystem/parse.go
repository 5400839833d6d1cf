package typesystem

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads a type expression in the notation printed by String():
//
//	Vec<T>                        nominal type applied to arguments
//	fn(u8, u16) -> bool           function pointer
//	<T as Iterator>::Item         projection
//	?0                            inference variable
//	const 3: usize                evaluated constant
//	const N                       const parameter
//	const {LEN}<T>                unevaluated constant
//	const ?c1                     constant inference variable
//	const <T as Tr>::SIZE         projection constant
func Parse(src string) (Type, error) {
	p := &typeParser{src: src}
	p.skipSpace()
	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse %q: unexpected %q at offset %d", src, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and static tables.
func MustParse(src string) Type {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek(s string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *typeParser) accept(s string) bool {
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *typeParser) expect(s string) error {
	if !p.accept(s) {
		return fmt.Errorf("expected %q at offset %d", s, p.pos)
	}
	return nil
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '\'' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (p *typeParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return "", fmt.Errorf("expected identifier at offset %d", start)
	}
	return p.src[start:p.pos], nil
}

// keyword accepts word only when it is not the prefix of a longer identifier.
func (p *typeParser) keyword(word string) bool {
	if !p.peek(word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) && isIdentByte(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *typeParser) parseType() (Type, error) {
	switch {
	case p.keyword("fn"):
		return p.parseFunc()
	case p.keyword("const"):
		return p.parseConst()
	case p.accept("<"):
		return p.parseProjection(AliasProjection)
	case p.accept("?"):
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		return TVar{Name: "?" + name}, nil
	case p.accept("()"):
		return TCon{Name: "()"}, nil
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if !p.accept("<") {
		return TCon{Name: name}, nil
	}
	args, err := p.parseList(">")
	if err != nil {
		return nil, err
	}
	return TApp{Constructor: TCon{Name: name}, Args: args}, nil
}

func (p *typeParser) parseList(closing string) ([]Type, error) {
	var out []Type
	if p.accept(closing) {
		return out, nil
	}
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.accept(closing) {
			return out, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) parseFunc() (Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	params, err := p.parseList(")")
	if err != nil {
		return nil, err
	}
	fn := TFunc{Params: params}
	if p.accept("->") {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.ReturnType = ret
	}
	return fn, nil
}

// parseProjection parses the remainder of `<Self as Trait<Args>>::Item`
// after the opening angle bracket.
func (p *typeParser) parseProjection(kind AliasKind) (Type, error) {
	self, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.keyword("as") {
		return nil, fmt.Errorf("expected \"as\" at offset %d", p.pos)
	}
	trait, err := p.ident()
	if err != nil {
		return nil, err
	}
	args := []Type{self}
	if p.accept("<") {
		rest, err := p.parseList(">")
		if err != nil {
			return nil, err
		}
		args = append(args, rest...)
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	if err := p.expect("::"); err != nil {
		return nil, err
	}
	item, err := p.ident()
	if err != nil {
		return nil, err
	}
	return TAlias{Kind: kind, Trait: trait, Item: item, Args: args}, nil
}

func (p *typeParser) parseConst() (Type, error) {
	p.skipSpace()
	switch {
	case p.accept("<"):
		return p.parseProjection(AliasProjectionConst)
	case p.accept("?"):
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		return ConstInfer{Name: "?" + name}, nil
	case p.accept("{"):
		def, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		c := ConstUnevaluated{Def: def}
		if p.accept("<") {
			args, err := p.parseList(">")
			if err != nil {
				return nil, err
			}
			c.Args = args
		}
		return c, nil
	}

	p.skipSpace()
	if p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '-') {
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		value := p.src[start:p.pos]
		var ty Type = TCon{Name: "usize"}
		if p.accept(":") {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ty = t
		}
		return ConstValue{Value: value, Ty: ty}, nil
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	return ConstParam{Name: name}, nil
}
