package mir

import "mirbuild/internal/hir"

func (l *funcLowerer) ifInto(dst Place, block BlockID, e *hir.Expr, data hir.IfData) (BlockID, error) {
	block, cond, err := l.asOperand(block, data.Cond)
	if err != nil {
		return NoBlockID, err
	}
	scope := l.innermostScope()
	thenBB := l.cfg.startNewBlock()
	elseBB := l.cfg.startNewBlock()
	if err := l.cfg.terminate(block, scope, e.Span, Terminator{
		Kind: TermIf,
		If:   IfTerm{Cond: cond, Then: thenBB, Else: elseBB},
	}); err != nil {
		return NoBlockID, err
	}

	thenEnd, err := l.exprInto(dst, thenBB, data.Then)
	if err != nil {
		return NoBlockID, err
	}
	elseEnd := elseBB
	if data.Else != nil {
		elseEnd, err = l.exprInto(dst, elseBB, data.Else)
		if err != nil {
			return NoBlockID, err
		}
	} else if err := l.cfg.pushAssignUnit(elseBB, scope, e.Span, dst, l.unit()); err != nil {
		return NoBlockID, err
	}

	join := l.cfg.startNewBlock()
	if err := l.cfg.gotoBlock(thenEnd, scope, e.Span, join); err != nil {
		return NoBlockID, err
	}
	if err := l.cfg.gotoBlock(elseEnd, scope, e.Span, join); err != nil {
		return NoBlockID, err
	}
	return join, nil
}

// logicalInto lowers && and || with short-circuit branches.
func (l *funcLowerer) logicalInto(dst Place, block BlockID, e *hir.Expr, data hir.BinaryData) (BlockID, error) {
	block, left, err := l.asOperand(block, data.Left)
	if err != nil {
		return NoBlockID, err
	}
	scope := l.innermostScope()
	rhsBB := l.cfg.startNewBlock()
	shortBB := l.cfg.startNewBlock()
	term := IfTerm{Cond: left, Then: rhsBB, Else: shortBB}
	shortValue := false
	if data.Op == hir.BinOr {
		term = IfTerm{Cond: left, Then: shortBB, Else: rhsBB}
		shortValue = true
	}
	if err := l.cfg.terminate(block, scope, e.Span, Terminator{Kind: TermIf, If: term}); err != nil {
		return NoBlockID, err
	}
	if err := l.cfg.pushAssign(shortBB, scope, e.Span, dst, RValue{
		Kind: RValueUse,
		Use:  l.constOperand(e.Type, hir.LiteralData{Kind: hir.LiteralBool, BoolValue: shortValue}),
	}); err != nil {
		return NoBlockID, err
	}
	rhsEnd, err := l.exprInto(dst, rhsBB, data.Right)
	if err != nil {
		return NoBlockID, err
	}

	join := l.cfg.startNewBlock()
	if err := l.cfg.gotoBlock(shortBB, scope, e.Span, join); err != nil {
		return NoBlockID, err
	}
	if err := l.cfg.gotoBlock(rhsEnd, scope, e.Span, join); err != nil {
		return NoBlockID, err
	}
	return join, nil
}

// loopInto lowers a loop inside its own extent. The header block evaluates
// the condition, if any; continue jumps to it and break jumps to the exit.
// The destination gets () only when the exit can be reached: through a
// break or a false condition. Otherwise the exit block has no predecessors.
func (l *funcLowerer) loopInto(dst Place, block BlockID, e *hir.Expr, data hir.LoopData) (BlockID, error) {
	return l.inScope(data.Extent, block, e.Span, func(block BlockID) (BlockID, error) {
		scope := l.innermostScope()
		header := l.cfg.startNewBlock()
		exit := l.cfg.startNewBlock()
		if err := l.cfg.gotoBlock(block, scope, e.Span, header); err != nil {
			return NoBlockID, err
		}

		l.pushLoop(data.Label, data.Extent, header, exit)
		body := header
		if data.Cond != nil {
			condEnd, cond, err := l.asOperand(header, data.Cond)
			if err != nil {
				return NoBlockID, err
			}
			body = l.cfg.startNewBlock()
			if err := l.cfg.terminate(condEnd, scope, data.Cond.Span, Terminator{
				Kind: TermIf,
				If:   IfTerm{Cond: cond, Then: body, Else: exit},
			}); err != nil {
				return NoBlockID, err
			}
		}
		bodyEnd, err := l.lowerBlock(l.unitTemp(), body, data.Body)
		if err != nil {
			return NoBlockID, err
		}
		if err := l.cfg.gotoBlock(bodyEnd, scope, e.Span, header); err != nil {
			return NoBlockID, err
		}
		loop := l.popLoop()
		l.point("loop.exit", "e%d might_break=%t", data.Extent, loop.mightBreak)

		if loop.mightBreak || data.Cond != nil {
			if err := l.cfg.pushAssignUnit(exit, scope, e.Span, dst, l.unit()); err != nil {
				return NoBlockID, err
			}
		}
		return exit, nil
	})
}
