package testkit

import (
	"fmt"

	"mirbuild/internal/hir"
	"mirbuild/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a function:
// 1) fn.Span is non-empty
// 2) every statement and expression span is non-empty, in the same file
// and fully contained in fn.Span
func CheckSpanInvariants(fn *hir.Func) error {
	if fn == nil {
		return fmt.Errorf("nil function")
	}
	if fn.Span.End <= fn.Span.Start {
		return fmt.Errorf("fn %s: span is empty: %v", fn.Name, fn.Span)
	}
	check := func(what string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("fn %s: empty %s span: %v", fn.Name, what, sp)
		}
		if sp.File != fn.Span.File {
			return fmt.Errorf("fn %s: %s span file mismatch: got=%d want=%d", fn.Name, what, sp.File, fn.Span.File)
		}
		if sp.Start < fn.Span.Start || sp.End > fn.Span.End {
			return fmt.Errorf("fn %s: %s span %v is outside %v", fn.Name, what, sp, fn.Span)
		}
		return nil
	}

	var err error
	var walkBlock func(*hir.Block)
	var walkExpr func(*hir.Expr)
	walkExpr = func(e *hir.Expr) {
		if e == nil || err != nil {
			return
		}
		if err = check(e.Kind.String(), e.Span); err != nil {
			return
		}
		switch data := e.Data.(type) {
		case hir.UnaryData:
			walkExpr(data.Operand)
		case hir.BinaryData:
			walkExpr(data.Left)
			walkExpr(data.Right)
		case hir.CallData:
			for _, a := range data.Args {
				walkExpr(a)
			}
		case hir.FieldData:
			walkExpr(data.Object)
		case hir.IndexData:
			walkExpr(data.Object)
			walkExpr(data.Index)
		case hir.TupleData:
			for _, el := range data.Elems {
				walkExpr(el)
			}
		case hir.BlockExprData:
			walkBlock(data.Block)
		case hir.IfData:
			walkExpr(data.Cond)
			walkExpr(data.Then)
			walkExpr(data.Else)
		case hir.LoopData:
			walkExpr(data.Cond)
			walkBlock(data.Body)
		case hir.ScopeData:
			walkExpr(data.Value)
		case hir.AssignData:
			walkExpr(data.LHS)
			walkExpr(data.RHS)
		case hir.AssignOpData:
			walkExpr(data.LHS)
			walkExpr(data.RHS)
		case hir.ReturnData:
			walkExpr(data.Value)
		}
	}
	walkBlock = func(b *hir.Block) {
		if b == nil || err != nil {
			return
		}
		for i := range b.Stmts {
			st := &b.Stmts[i]
			if err = check("stmt", st.Span); err != nil {
				return
			}
			switch data := st.Data.(type) {
			case hir.ExprStmtData:
				walkExpr(data.Expr)
			case hir.LetData:
				walkExpr(data.Init)
			}
		}
		walkExpr(b.Expr)
	}
	walkBlock(fn.Body)
	return err
}
