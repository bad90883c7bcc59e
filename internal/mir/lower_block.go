package mir

import (
	"fmt"

	"mirbuild/internal/hir"
)

// lowerBlock lowers b starting in block and writes its value into dst.
//
// Each let opens a scope for the rest of the block; those scopes are kept on
// a stack and popped in reverse after the tail, before the block's own scope.
func (l *funcLowerer) lowerBlock(dst Place, block BlockID, b *hir.Block) (BlockID, error) {
	return l.inScope(b.Extent, block, b.Span, func(block BlockID) (BlockID, error) {
		var lets []hir.ExtentID
		var err error
		for i := range b.Stmts {
			stmt := &b.Stmts[i]
			switch data := stmt.Data.(type) {
			case hir.ExprStmtData:
				block, err = l.inScope(data.Extent, block, stmt.Span, func(block BlockID) (BlockID, error) {
					return l.stmtExpr(block, data.Expr)
				})
			case hir.LetData:
				remainder := l.pushScope(data.Remainder, block, stmt.Span)
				lets = append(lets, data.Remainder)
				block, err = l.lowerLet(block, remainder, stmt, data)
			default:
				err = fmt.Errorf("mir: unexpected statement kind %s", stmt.Kind)
			}
			if err != nil {
				return NoBlockID, err
			}
		}

		if b.Expr != nil {
			block, err = l.exprInto(dst, block, b.Expr)
			if err != nil {
				return NoBlockID, err
			}
		} else if err := l.cfg.pushAssignUnit(block, l.innermostScope(), b.Span, dst, l.unit()); err != nil {
			return NoBlockID, err
		}

		for i := len(lets) - 1; i >= 0; i-- {
			block, err = l.popScope(b.Span, lets[i], block)
			if err != nil {
				return NoBlockID, err
			}
		}
		return block, nil
	})
}

func (l *funcLowerer) lowerLet(block BlockID, remainder ScopeID, stmt *hir.Stmt, data hir.LetData) (BlockID, error) {
	body := func(block BlockID) (BlockID, error) {
		if data.Init == nil {
			return block, l.declareBindings(remainder, data.Pattern)
		}
		return l.exprIntoPattern(block, remainder, data.Pattern, data.Init)
	}
	if !data.InitExtent.IsValid() {
		return body(block)
	}
	return l.inScope(data.InitExtent, block, stmt.Span, body)
}
