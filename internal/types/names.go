package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Format renders id in the same syntax Parse accepts.
func (in *Interner) Format(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool, KindString, KindInt, KindUint, KindFloat:
		return tt.Kind.String()
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.Format(tt.Elem), tt.Count)
	case KindReference:
		if tt.Mutable {
			return "&mut " + in.Format(tt.Elem)
		}
		return "&" + in.Format(tt.Elem)
	case KindOwn:
		return "own " + in.Format(tt.Elem)
	case KindTuple:
		elems := in.tuples[tt.Payload]
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = in.Format(e)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		return in.structs[tt.Payload].Name
	default:
		return tt.Kind.String()
	}
}

// Parse reads a type expression:
//
//	unit | () | bool | string | int | uint | float
//	own T | &T | &mut T | [T; N] | (T, U, ...) | StructName
//
// Struct names must already be declared.
func (in *Interner) Parse(s string) (TypeID, error) {
	p := &typeParser{in: in, src: s}
	id, err := p.parse()
	if err != nil {
		return NoTypeID, fmt.Errorf("types: parse %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return NoTypeID, fmt.Errorf("types: parse %q: trailing input at %d", s, p.pos)
	}
	return id, nil
}

type typeParser struct {
	in  *Interner
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) eat(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parse() (TypeID, error) {
	b := p.in.builtins
	switch {
	case p.eat("&"):
		mut := false
		save := p.pos
		if p.ident() == "mut" {
			mut = true
		} else {
			p.pos = save
		}
		elem, err := p.parse()
		if err != nil {
			return NoTypeID, err
		}
		return p.in.Intern(MakeReference(elem, mut)), nil
	case p.eat("["):
		elem, err := p.parse()
		if err != nil {
			return NoTypeID, err
		}
		if !p.eat(";") {
			return NoTypeID, fmt.Errorf("expected ';' at %d", p.pos)
		}
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.ParseUint(p.src[start:p.pos], 10, 32)
		if err != nil {
			return NoTypeID, fmt.Errorf("bad array length at %d: %w", start, err)
		}
		if !p.eat("]") {
			return NoTypeID, fmt.Errorf("expected ']' at %d", p.pos)
		}
		return p.in.Intern(MakeArray(elem, uint32(n))), nil
	case p.eat("("):
		var elems []TypeID
		for !p.eat(")") {
			elem, err := p.parse()
			if err != nil {
				return NoTypeID, err
			}
			elems = append(elems, elem)
			if !p.eat(",") {
				if !p.eat(")") {
					return NoTypeID, fmt.Errorf("expected ',' or ')' at %d", p.pos)
				}
				break
			}
		}
		return p.in.Tuple(elems...), nil
	}

	name := p.ident()
	switch name {
	case "":
		return NoTypeID, fmt.Errorf("expected type at %d", p.pos)
	case "unit":
		return b.Unit, nil
	case "bool":
		return b.Bool, nil
	case "string":
		return b.String, nil
	case "int":
		return b.Int, nil
	case "uint":
		return b.Uint, nil
	case "float":
		return b.Float, nil
	case "own":
		elem, err := p.parse()
		if err != nil {
			return NoTypeID, err
		}
		return p.in.Intern(MakeOwn(elem)), nil
	}
	if id, ok := p.in.Named(name); ok {
		return id, nil
	}
	return NoTypeID, fmt.Errorf("unknown type %q", name)
}
