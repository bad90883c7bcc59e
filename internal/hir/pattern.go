package hir

import (
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// PatternKind enumerates the patterns a let may bind.
type PatternKind uint8

const (
	PatBinding PatternKind = iota
	PatTuple
	PatWild
)

func (k PatternKind) String() string {
	switch k {
	case PatBinding:
		return "Binding"
	case PatTuple:
		return "Tuple"
	case PatWild:
		return "Wild"
	default:
		return "Unknown"
	}
}

// Pattern is the left side of a let.
type Pattern struct {
	Kind    PatternKind
	Span    source.Span
	Type    types.TypeID
	Name    string    // PatBinding
	Binding BindingID // PatBinding
	Mutable bool      // PatBinding
	Elems   []*Pattern
}

// Bindings returns the binding patterns in declaration order.
func (p *Pattern) Bindings() []*Pattern {
	var out []*Pattern
	var walk func(*Pattern)
	walk = func(p *Pattern) {
		if p == nil {
			return
		}
		switch p.Kind {
		case PatBinding:
			out = append(out, p)
		case PatTuple:
			for _, e := range p.Elems {
				walk(e)
			}
		}
	}
	walk(p)
	return out
}
