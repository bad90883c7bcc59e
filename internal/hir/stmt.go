package hir

import "mirbuild/internal/source"

// StmtKind enumerates HIR statement kinds.
type StmtKind uint8

const (
	// StmtExpr evaluates an expression for its effects.
	StmtExpr StmtKind = iota
	// StmtLet declares bindings, optionally initialised.
	StmtLet
)

func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtLet:
		return "Let"
	default:
		return "Unknown"
	}
}

// Stmt represents an HIR statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// ExprStmtData holds data for StmtExpr. Extent covers the statement; its
// temporaries die at the end of it.
type ExprStmtData struct {
	Extent ExtentID
	Expr   *Expr
}

func (ExprStmtData) stmtData() {}

// LetData holds data for StmtLet.
//
// Remainder is the extent running from this let to the end of the
// enclosing block; the bindings live there. InitExtent covers only the
// initializer so its temporaries die before the next statement.
type LetData struct {
	Remainder  ExtentID
	InitExtent ExtentID
	Pattern    *Pattern
	Init       *Expr // nil if none
}

func (LetData) stmtData() {}
