package mir

import (
	"fmt"

	"mirbuild/internal/hir"
	"mirbuild/internal/types"
)

// declareBindings allocates a local for every binding of pat and schedules
// its drop in scope. Nothing is stored.
func (l *funcLowerer) declareBindings(scope ScopeID, pat *hir.Pattern) error {
	for _, b := range pat.Bindings() {
		id := l.declareLocal(b.Binding, b.Name, b.Type, LocalVar, b.Mutable, b.Span)
		if err := l.scheduleDrop(scope, LocalPlace(id), b.Type, b.Span); err != nil {
			return err
		}
	}
	return nil
}

// exprIntoPattern declares the bindings of pat in scope and initialises them
// from init. A tuple pattern receives init through a temporary which is
// then moved apart element by element; elements matched by _ are dropped.
func (l *funcLowerer) exprIntoPattern(block BlockID, scope ScopeID, pat *hir.Pattern, init *hir.Expr) (BlockID, error) {
	if err := l.declareBindings(scope, pat); err != nil {
		return NoBlockID, err
	}
	switch pat.Kind {
	case hir.PatBinding:
		return l.exprInto(LocalPlace(l.locals[pat.Binding]), block, init)
	case hir.PatWild, hir.PatTuple:
		block, tmp, err := l.asTemp(block, init)
		if err != nil {
			return NoBlockID, err
		}
		return l.destructure(block, LocalPlace(tmp), init.Type, pat)
	default:
		return NoBlockID, fmt.Errorf("mir: unexpected pattern kind %s", pat.Kind)
	}
}

func (l *funcLowerer) destructure(block BlockID, src Place, ty types.TypeID, pat *hir.Pattern) (BlockID, error) {
	switch pat.Kind {
	case hir.PatBinding:
		return block, l.cfg.pushAssign(block, l.innermostScope(), pat.Span, LocalPlace(l.locals[pat.Binding]), RValue{
			Kind: RValueUse,
			Use:  l.useOf(src, ty),
		})
	case hir.PatWild:
		return l.buildDrop(block, pat.Span, src, ty)
	case hir.PatTuple:
		elems := l.in.TupleElems(ty)
		if len(elems) != len(pat.Elems) {
			return NoBlockID, fmt.Errorf("mir: tuple pattern of %d elements against %s", len(pat.Elems), l.in.Format(ty))
		}
		var err error
		for i, sub := range pat.Elems {
			field := src.Project(PlaceProj{Kind: PlaceProjField, FieldIdx: i})
			block, err = l.destructure(block, field, elems[i], sub)
			if err != nil {
				return NoBlockID, err
			}
		}
		return block, nil
	default:
		return NoBlockID, fmt.Errorf("mir: unexpected pattern kind %s", pat.Kind)
	}
}
