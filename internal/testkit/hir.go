// Package testkit builds HIR by hand and inspects lowered graphs in tests.
package testkit

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// FuncBuilder assembles one hir.Func. Extents and bindings are numbered in
// creation order; every node gets a distinct one-byte span.
type FuncBuilder struct {
	In *types.Interner

	fn          *hir.Func
	nextExtent  hir.ExtentID
	nextBinding hir.BindingID
	offset      uint32
}

// NewFunc starts a function returning result. Its call-site extent is e1.
func NewFunc(in *types.Interner, name string, result types.TypeID) *FuncBuilder {
	b := &FuncBuilder{In: in}
	b.fn = &hir.Func{Name: name, Result: result}
	b.fn.Extent = b.Extent()
	return b
}

// Extent allocates a fresh extent.
func (b *FuncBuilder) Extent() hir.ExtentID {
	b.nextExtent++
	return b.nextExtent
}

// Span allocates a fresh span.
func (b *FuncBuilder) Span() source.Span {
	b.offset++
	return source.Span{Start: b.offset, End: b.offset + 1}
}

func (b *FuncBuilder) binding() hir.BindingID {
	b.nextBinding++
	return b.nextBinding
}

// Param declares a parameter and returns a pattern naming it, for Var.
func (b *FuncBuilder) Param(name string, ty types.TypeID) *hir.Pattern {
	p := hir.Param{Name: name, Binding: b.binding(), Type: ty, Span: b.Span()}
	b.fn.Params = append(b.fn.Params, p)
	return &hir.Pattern{Kind: hir.PatBinding, Span: p.Span, Type: ty, Name: name, Binding: p.Binding}
}

// Bind makes a binding pattern for a let.
func (b *FuncBuilder) Bind(name string, ty types.TypeID) *hir.Pattern {
	return &hir.Pattern{Kind: hir.PatBinding, Span: b.Span(), Type: ty, Name: name, Binding: b.binding(), Mutable: true}
}

// Wild makes a _ pattern.
func (b *FuncBuilder) Wild(ty types.TypeID) *hir.Pattern {
	return &hir.Pattern{Kind: hir.PatWild, Span: b.Span(), Type: ty}
}

// TuplePat makes a tuple pattern over elems.
func (b *FuncBuilder) TuplePat(elems ...*hir.Pattern) *hir.Pattern {
	tys := make([]types.TypeID, len(elems))
	for i, e := range elems {
		tys[i] = e.Type
	}
	return &hir.Pattern{Kind: hir.PatTuple, Span: b.Span(), Type: b.In.Tuple(tys...), Elems: elems}
}

// Block makes a block with its own extent. tail may be nil.
func (b *FuncBuilder) Block(tail *hir.Expr, stmts ...hir.Stmt) *hir.Block {
	return &hir.Block{Extent: b.Extent(), Span: b.Span(), Stmts: stmts, Expr: tail}
}

// Stmt wraps e as an expression statement.
func (b *FuncBuilder) Stmt(e *hir.Expr) hir.Stmt {
	return hir.Stmt{Kind: hir.StmtExpr, Span: b.Span(), Data: hir.ExprStmtData{Extent: b.Extent(), Expr: e}}
}

// Let declares pat, initialised from init when it is not nil.
func (b *FuncBuilder) Let(pat *hir.Pattern, init *hir.Expr) hir.Stmt {
	return hir.Stmt{Kind: hir.StmtLet, Span: b.Span(), Data: hir.LetData{
		Remainder:  b.Extent(),
		InitExtent: b.Extent(),
		Pattern:    pat,
		Init:       init,
	}}
}

func (b *FuncBuilder) expr(kind hir.ExprKind, ty types.TypeID, data hir.ExprData) *hir.Expr {
	return &hir.Expr{Kind: kind, Type: ty, Span: b.Span(), Data: data}
}

func (b *FuncBuilder) unit() types.TypeID { return b.In.Builtins().Unit }

// Var reads the binding named by pat.
func (b *FuncBuilder) Var(pat *hir.Pattern) *hir.Expr {
	return b.expr(hir.ExprVarRef, pat.Type, hir.VarRefData{Name: pat.Name, Binding: pat.Binding})
}

func (b *FuncBuilder) Int(v int64) *hir.Expr {
	return b.expr(hir.ExprLiteral, b.In.Builtins().Int, hir.LiteralData{Kind: hir.LiteralInt, IntValue: v})
}

func (b *FuncBuilder) Bool(v bool) *hir.Expr {
	return b.expr(hir.ExprLiteral, b.In.Builtins().Bool, hir.LiteralData{Kind: hir.LiteralBool, BoolValue: v})
}

func (b *FuncBuilder) Str(v string) *hir.Expr {
	return b.expr(hir.ExprLiteral, b.In.Builtins().String, hir.LiteralData{Kind: hir.LiteralString, StringValue: v})
}

func (b *FuncBuilder) Unit() *hir.Expr {
	return b.expr(hir.ExprLiteral, b.unit(), hir.LiteralData{Kind: hir.LiteralUnit})
}

// Call calls callee, which returns ty.
func (b *FuncBuilder) Call(callee string, ty types.TypeID, args ...*hir.Expr) *hir.Expr {
	return b.expr(hir.ExprCall, ty, hir.CallData{Callee: callee, Args: args})
}

func (b *FuncBuilder) Binary(op hir.BinaryOp, ty types.TypeID, left, right *hir.Expr) *hir.Expr {
	return b.expr(hir.ExprBinary, ty, hir.BinaryData{Op: op, Left: left, Right: right})
}

// Index reads object[index]; elem is the element type.
func (b *FuncBuilder) Index(object, index *hir.Expr, elem types.TypeID) *hir.Expr {
	return b.expr(hir.ExprIndex, elem, hir.IndexData{Object: object, Index: index})
}

// Field reads element idx of object.
func (b *FuncBuilder) Field(object *hir.Expr, idx int, name string, ty types.TypeID) *hir.Expr {
	return b.expr(hir.ExprField, ty, hir.FieldData{Object: object, Name: name, Index: idx})
}

func (b *FuncBuilder) Tuple(elems ...*hir.Expr) *hir.Expr {
	tys := make([]types.TypeID, len(elems))
	for i, e := range elems {
		tys[i] = e.Type
	}
	return b.expr(hir.ExprTuple, b.In.Tuple(tys...), hir.TupleData{Elems: elems})
}

// BlockExpr uses blk as a value.
func (b *FuncBuilder) BlockExpr(blk *hir.Block, ty types.TypeID) *hir.Expr {
	return b.expr(hir.ExprBlock, ty, hir.BlockExprData{Block: blk})
}

// Scope wraps value in a fresh extent.
func (b *FuncBuilder) Scope(value *hir.Expr) *hir.Expr {
	return b.expr(hir.ExprScope, value.Type, hir.ScopeData{Extent: b.Extent(), Value: value})
}

func (b *FuncBuilder) If(cond, then, els *hir.Expr, ty types.TypeID) *hir.Expr {
	return b.expr(hir.ExprIf, ty, hir.IfData{Cond: cond, Then: then, Else: els})
}

// Loop makes `loop` when cond is nil and `while cond` otherwise.
func (b *FuncBuilder) Loop(label string, cond *hir.Expr, body *hir.Block) *hir.Expr {
	return b.expr(hir.ExprLoop, b.unit(), hir.LoopData{Label: label, Extent: b.Extent(), Cond: cond, Body: body})
}

func (b *FuncBuilder) Assign(lhs, rhs *hir.Expr) *hir.Expr {
	return b.expr(hir.ExprAssign, b.unit(), hir.AssignData{LHS: lhs, RHS: rhs})
}

func (b *FuncBuilder) AssignOp(op hir.BinaryOp, lhs, rhs *hir.Expr) *hir.Expr {
	return b.expr(hir.ExprAssignOp, b.unit(), hir.AssignOpData{Op: op, LHS: lhs, RHS: rhs})
}

func (b *FuncBuilder) Break(label string) *hir.Expr {
	return b.expr(hir.ExprBreak, b.unit(), hir.BreakData{Label: label})
}

func (b *FuncBuilder) Continue(label string) *hir.Expr {
	return b.expr(hir.ExprContinue, b.unit(), hir.ContinueData{Label: label})
}

// Return returns value, or () when value is nil.
func (b *FuncBuilder) Return(value *hir.Expr) *hir.Expr {
	return b.expr(hir.ExprReturn, b.unit(), hir.ReturnData{Value: value})
}

// Finish installs body and returns the function.
func (b *FuncBuilder) Finish(body *hir.Block) *hir.Func {
	b.fn.Body = body
	b.fn.Span = source.Span{Start: 0, End: b.offset + 2}
	b.fn.Extents = uint32(b.nextExtent) + 1
	b.fn.Bindings = uint32(b.nextBinding) + 1
	return b.fn
}
