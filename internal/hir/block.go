package hir

import "mirbuild/internal/source"

// Block is a braced statement list with an optional trailing value.
type Block struct {
	Extent ExtentID
	Span   source.Span
	Stmts  []Stmt
	Expr   *Expr // trailing expression, nil if none
}

// IsEmpty reports whether the block has neither statements nor a tail.
func (b *Block) IsEmpty() bool {
	return len(b.Stmts) == 0 && b.Expr == nil
}
