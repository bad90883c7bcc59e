package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
)

// stmtExpr lowers e for its effects only.
//
// Assignments evaluate right to left: the right side is reduced first, then
// the left place is computed. Break, continue and return leave through
// exitScope and lowering carries on in a fresh block with no predecessors.
func (l *funcLowerer) stmtExpr(block BlockID, e *hir.Expr) (BlockID, error) {
	switch data := e.Data.(type) {
	case hir.ScopeData:
		return l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
			return l.stmtExpr(block, data.Value)
		})
	case hir.AssignData:
		return l.lowerAssign(block, e, data)
	case hir.AssignOpData:
		return l.lowerAssignOp(block, e, data)
	case hir.ContinueData:
		return l.breakOrContinue(e.Span, data.Label, block, false)
	case hir.BreakData:
		return l.breakOrContinue(e.Span, data.Label, block, true)
	case hir.ReturnData:
		return l.lowerReturn(block, e, data)
	default:
		var dst Place
		if l.in.IsUnit(e.Type) {
			dst = l.unitTemp()
		} else {
			dst = LocalPlace(l.newTemp(e.Type, "stmt", e.Span))
		}
		block, err := l.exprInto(dst, block, e)
		if err != nil {
			return NoBlockID, err
		}
		return l.buildDrop(block, e.Span, dst, e.Type)
	}
}

func (l *funcLowerer) lowerAssign(block BlockID, e *hir.Expr, data hir.AssignData) (BlockID, error) {
	if !data.LHS.IsPlace() {
		return NoBlockID, internalErr(ErrBadPlace, data.LHS.Span, "cannot assign to %s", data.LHS.Kind)
	}
	lhsTy := data.LHS.Type
	scope := l.innermostScope()

	if !l.drops.NeedsDrop(lhsTy) {
		block, rv, err := l.asRValue(block, data.RHS)
		if err != nil {
			return NoBlockID, err
		}
		block, lhs, err := l.asPlace(block, data.LHS)
		if err != nil {
			return NoBlockID, err
		}
		return block, l.cfg.pushAssign(block, scope, e.Span, lhs, rv)
	}

	block, rhs, err := l.asOperand(block, data.RHS)
	if err != nil {
		return NoBlockID, err
	}
	block, lhs, err := l.asPlace(block, data.LHS)
	if err != nil {
		return NoBlockID, err
	}
	block, err = l.buildDrop(block, data.LHS.Span, lhs, lhsTy)
	if err != nil {
		return NoBlockID, err
	}
	return block, l.cfg.pushAssign(block, scope, e.Span, lhs, RValue{Kind: RValueUse, Use: rhs})
}

// lowerAssignOp lowers "lhs op= rhs" to "lhs = lhs op rhs". The old value is
// read in place, so the left side must not need drop.
func (l *funcLowerer) lowerAssignOp(block BlockID, e *hir.Expr, data hir.AssignOpData) (BlockID, error) {
	if !data.LHS.IsPlace() {
		return NoBlockID, internalErr(ErrBadPlace, data.LHS.Span, "cannot assign to %s", data.LHS.Kind)
	}
	lhsTy := data.LHS.Type
	if l.drops.NeedsDrop(lhsTy) {
		return NoBlockID, internalErr(ErrCompoundAssignDrop, e.Span, "%s= on %s", data.Op, l.in.Format(lhsTy))
	}
	scope := l.innermostScope()

	block, rhs, err := l.asOperand(block, data.RHS)
	if err != nil {
		return NoBlockID, err
	}
	block, lhs, err := l.asPlace(block, data.LHS)
	if err != nil {
		return NoBlockID, err
	}
	return block, l.cfg.pushAssign(block, scope, e.Span, lhs, RValue{
		Kind: RValueBinary,
		Binary: BinaryOp{
			Op:    data.Op,
			Left:  Operand{Kind: OperandCopy, Type: lhsTy, Place: lhs},
			Right: rhs,
		},
	})
}

func (l *funcLowerer) breakOrContinue(span source.Span, label string, block BlockID, isBreak bool) (BlockID, error) {
	loop, err := l.findLoop(span, label)
	if err != nil {
		return NoBlockID, err
	}
	target := loop.continueBB
	if isBreak {
		loop.mightBreak = true
		target = loop.breakBB
	}
	if err := l.exitScope(span, loop.extent, block, target); err != nil {
		return NoBlockID, err
	}
	return l.cfg.startNewBlock(), nil
}

func (l *funcLowerer) lowerReturn(block BlockID, e *hir.Expr, data hir.ReturnData) (BlockID, error) {
	var err error
	if data.Value != nil {
		block, err = l.exprInto(ReturnPlace(), block, data.Value)
	} else {
		err = l.cfg.pushAssignUnit(block, l.innermostScope(), e.Span, ReturnPlace(), l.unit())
	}
	if err != nil {
		return NoBlockID, err
	}
	if err := l.exitScope(e.Span, l.fnExtent, block, l.f.ReturnBlock); err != nil {
		return NoBlockID, err
	}
	return l.cfg.startNewBlock(), nil
}
