package mir

import (
	"fmt"

	"mirbuild/internal/hir"
)

// exprInto lowers e and stores its value into dst.
func (l *funcLowerer) exprInto(dst Place, block BlockID, e *hir.Expr) (BlockID, error) {
	if e == nil {
		return NoBlockID, fmt.Errorf("mir: nil expression")
	}
	switch data := e.Data.(type) {
	case hir.VarRefData, hir.FieldData, hir.IndexData:
		return l.placeInto(dst, block, e)
	case hir.UnaryData:
		if data.Op == hir.UnaryDeref {
			return l.placeInto(dst, block, e)
		}
	case hir.BinaryData:
		if data.Op.IsLogical() {
			return l.logicalInto(dst, block, e, data)
		}
	case hir.CallData:
		return l.callInto(dst, block, e, data)
	case hir.BlockExprData:
		return l.lowerBlock(dst, block, data.Block)
	case hir.ScopeData:
		return l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
			return l.exprInto(dst, block, data.Value)
		})
	case hir.IfData:
		return l.ifInto(dst, block, e, data)
	case hir.LoopData:
		return l.loopInto(dst, block, e, data)
	case hir.AssignData, hir.AssignOpData:
		block, err := l.stmtExpr(block, e)
		if err != nil {
			return NoBlockID, err
		}
		return block, l.cfg.pushAssignUnit(block, l.innermostScope(), e.Span, dst, l.unit())
	case hir.BreakData, hir.ContinueData, hir.ReturnData:
		return l.stmtExpr(block, e)
	}

	block, rv, err := l.asRValue(block, e)
	if err != nil {
		return NoBlockID, err
	}
	return block, l.cfg.pushAssign(block, l.innermostScope(), e.Span, dst, rv)
}

func (l *funcLowerer) placeInto(dst Place, block BlockID, e *hir.Expr) (BlockID, error) {
	block, src, err := l.asPlace(block, e)
	if err != nil {
		return NoBlockID, err
	}
	return block, l.cfg.pushAssign(block, l.innermostScope(), e.Span, dst, RValue{
		Kind: RValueUse,
		Use:  l.useOf(src, e.Type),
	})
}

// callInto evaluates arguments left to right, then calls.
func (l *funcLowerer) callInto(dst Place, block BlockID, e *hir.Expr, data hir.CallData) (BlockID, error) {
	args := make([]Operand, 0, len(data.Args))
	for _, arg := range data.Args {
		var op Operand
		var err error
		block, op, err = l.asOperand(block, arg)
		if err != nil {
			return NoBlockID, err
		}
		args = append(args, op)
	}
	return block, l.cfg.pushCall(block, l.innermostScope(), e.Span, dst, data.Callee, args)
}

// asRValue reduces e to something that can sit on the right of an
// assignment. Operands inside are already evaluated.
func (l *funcLowerer) asRValue(block BlockID, e *hir.Expr) (BlockID, RValue, error) {
	switch data := e.Data.(type) {
	case hir.LiteralData:
		return block, RValue{Kind: RValueUse, Use: l.constOperand(e.Type, data)}, nil
	case hir.UnaryData:
		switch data.Op {
		case hir.UnaryRef, hir.UnaryRefMut:
			block, place, err := l.asPlace(block, data.Operand)
			if err != nil {
				return NoBlockID, RValue{}, err
			}
			return block, RValue{Kind: RValueRef, Ref: RefOp{Place: place, Mutable: data.Op == hir.UnaryRefMut}}, nil
		case hir.UnaryNeg, hir.UnaryNot:
			block, op, err := l.asOperand(block, data.Operand)
			if err != nil {
				return NoBlockID, RValue{}, err
			}
			return block, RValue{Kind: RValueUnary, Unary: UnaryOp{Op: data.Op, Operand: op}}, nil
		case hir.UnaryDeref:
		default:
			return NoBlockID, RValue{}, fmt.Errorf("mir: unknown unary operator %s", data.Op)
		}
	case hir.BinaryData:
		if !data.Op.IsLogical() {
			block, left, err := l.asOperand(block, data.Left)
			if err != nil {
				return NoBlockID, RValue{}, err
			}
			block, right, err := l.asOperand(block, data.Right)
			if err != nil {
				return NoBlockID, RValue{}, err
			}
			return block, RValue{Kind: RValueBinary, Binary: BinaryOp{Op: data.Op, Left: left, Right: right}}, nil
		}
	case hir.TupleData:
		elems := make([]Operand, 0, len(data.Elems))
		for _, el := range data.Elems {
			var op Operand
			var err error
			block, op, err = l.asOperand(block, el)
			if err != nil {
				return NoBlockID, RValue{}, err
			}
			elems = append(elems, op)
		}
		return block, RValue{Kind: RValueTuple, Tuple: TupleLit{Elems: elems}}, nil
	case hir.ScopeData:
		var rv RValue
		block, err := l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
			var err error
			block, rv, err = l.asRValue(block, data.Value)
			return block, err
		})
		return block, rv, err
	}

	block, op, err := l.asOperand(block, e)
	if err != nil {
		return NoBlockID, RValue{}, err
	}
	return block, RValue{Kind: RValueUse, Use: op}, nil
}

// asOperand evaluates e now. Constants stay inline; anything else is
// materialised into a fresh temporary so later evaluation cannot change it.
func (l *funcLowerer) asOperand(block BlockID, e *hir.Expr) (BlockID, Operand, error) {
	switch data := e.Data.(type) {
	case hir.LiteralData:
		return block, l.constOperand(e.Type, data), nil
	case hir.ScopeData:
		var op Operand
		block, err := l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
			var err error
			block, op, err = l.asOperand(block, data.Value)
			return block, err
		})
		return block, op, err
	}
	block, tmp, err := l.asTemp(block, e)
	if err != nil {
		return NoBlockID, Operand{}, err
	}
	return block, l.useOf(LocalPlace(tmp), e.Type), nil
}

func (l *funcLowerer) asTemp(block BlockID, e *hir.Expr) (BlockID, LocalID, error) {
	tmp := l.newTemp(e.Type, "", e.Span)
	block, err := l.exprInto(LocalPlace(tmp), block, e)
	if err != nil {
		return NoBlockID, NoLocalID, err
	}
	return block, tmp, nil
}

// asPlace computes the location e denotes. Index operands are copied into
// temporaries first; non-place expressions are stored into a temporary whose
// place is returned.
func (l *funcLowerer) asPlace(block BlockID, e *hir.Expr) (BlockID, Place, error) {
	switch data := e.Data.(type) {
	case hir.VarRefData:
		id, err := l.localFor(data.Binding, e.Span)
		if err != nil {
			return NoBlockID, Place{}, err
		}
		return block, LocalPlace(id), nil
	case hir.FieldData:
		block, base, err := l.asPlace(block, data.Object)
		if err != nil {
			return NoBlockID, Place{}, err
		}
		return block, base.Project(PlaceProj{Kind: PlaceProjField, FieldName: data.Name, FieldIdx: data.Index}), nil
	case hir.IndexData:
		block, base, err := l.asPlace(block, data.Object)
		if err != nil {
			return NoBlockID, Place{}, err
		}
		block, idx, err := l.asTemp(block, data.Index)
		if err != nil {
			return NoBlockID, Place{}, err
		}
		return block, base.Project(PlaceProj{Kind: PlaceProjIndex, IndexLocal: idx}), nil
	case hir.UnaryData:
		if data.Op == hir.UnaryDeref {
			block, base, err := l.asPlace(block, data.Operand)
			if err != nil {
				return NoBlockID, Place{}, err
			}
			return block, base.Project(PlaceProj{Kind: PlaceProjDeref}), nil
		}
	case hir.ScopeData:
		var place Place
		block, err := l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
			var err error
			block, place, err = l.asPlace(block, data.Value)
			return block, err
		})
		return block, place, err
	}

	block, tmp, err := l.asTemp(block, e)
	if err != nil {
		return NoBlockID, Place{}, err
	}
	return block, LocalPlace(tmp), nil
}
