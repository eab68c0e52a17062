package main

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

var witPrimitives = map[string]wit.Type{
	"bool":   wit.Bool{},
	"u8":     wit.U8{},
	"s8":     wit.S8{},
	"u16":    wit.U16{},
	"s16":    wit.S16{},
	"u32":    wit.U32{},
	"s32":    wit.S32{},
	"u64":    wit.U64{},
	"s64":    wit.S64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// parseWIT reads a WIT type expression: a primitive name,
// record{name:type,...} or tuple<type,...>. Whitespace is ignored.
func parseWIT(s string) (wit.Type, error) {
	p := &witParser{s: strings.Join(strings.Fields(s), "")}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("wit: unexpected %q at offset %d", p.s[p.pos:], p.pos)
	}
	return t, nil
}

type witParser struct {
	s   string
	pos int
}

func (p *witParser) typ() (wit.Type, error) {
	name := p.ident()
	switch name {
	case "record":
		return p.record()
	case "tuple":
		return p.tuple()
	case "":
		return nil, fmt.Errorf("wit: expected a type at offset %d", p.pos)
	}
	if t, ok := witPrimitives[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("wit: unknown type %q", name)
}

func (p *witParser) record() (wit.Type, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	var fields []wit.Field
	seen := make(map[string]bool)
	for {
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("wit: expected a field name at offset %d", p.pos)
		}
		if seen[name] {
			return nil, fmt.Errorf("wit: duplicate field %q", name)
		}
		seen[name] = true
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		fields = append(fields, wit.Field{Name: name, Type: t})
		if !p.accept(',') {
			break
		}
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}, nil
}

func (p *witParser) tuple() (wit.Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var types []wit.Type
	for {
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		if !p.accept(',') {
			break
		}
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
}

// ident reads a kebab-case identifier.
func (p *witParser) ident() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '-' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.s[start:p.pos]
}

func (p *witParser) accept(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *witParser) expect(c byte) error {
	if !p.accept(c) {
		return fmt.Errorf("wit: expected %q at offset %d", c, p.pos)
	}
	return nil
}
