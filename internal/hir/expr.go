package hir

import (
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprLiteral is a constant: int, float, bool, string or unit.
	ExprLiteral ExprKind = iota
	// ExprVarRef reads a resolved binding.
	ExprVarRef
	ExprUnary
	ExprBinary
	// ExprCall calls a function by name.
	ExprCall
	// ExprField projects a struct field or tuple element.
	ExprField
	ExprIndex
	ExprTuple
	// ExprBlock is a nested block used as a value.
	ExprBlock
	ExprIf
	// ExprLoop is `loop {}` or `while cond {}`, optionally labelled.
	ExprLoop
	// ExprScope wraps a value in an explicit lexical extent.
	ExprScope
	// ExprAssign is `lhs = rhs`.
	ExprAssign
	// ExprAssignOp is `lhs op= rhs`.
	ExprAssignOp
	ExprBreak
	ExprContinue
	ExprReturn
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprCall:
		return "Call"
	case ExprField:
		return "Field"
	case ExprIndex:
		return "Index"
	case ExprTuple:
		return "Tuple"
	case ExprBlock:
		return "Block"
	case ExprIf:
		return "If"
	case ExprLoop:
		return "Loop"
	case ExprScope:
		return "Scope"
	case ExprAssign:
		return "Assign"
	case ExprAssignOp:
		return "AssignOp"
	case ExprBreak:
		return "Break"
	case ExprContinue:
		return "Continue"
	case ExprReturn:
		return "Return"
	default:
		return "Unknown"
	}
}

// Expr represents an HIR expression with type information.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralUnit LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralBool
	LiteralString
)

// LiteralData holds data for ExprLiteral.
type LiteralData struct {
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func (LiteralData) exprData() {}

// VarRefData holds data for ExprVarRef.
type VarRefData struct {
	Name    string
	Binding BindingID
}

func (VarRefData) exprData() {}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Callee string
	Args   []*Expr
}

func (CallData) exprData() {}

// FieldData holds data for ExprField. Index is the struct field or tuple
// element position.
type FieldData struct {
	Object *Expr
	Name   string
	Index  int
}

func (FieldData) exprData() {}

// IndexData holds data for ExprIndex.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// TupleData holds data for ExprTuple.
type TupleData struct {
	Elems []*Expr
}

func (TupleData) exprData() {}

// BlockExprData holds data for ExprBlock.
type BlockExprData struct {
	Block *Block
}

func (BlockExprData) exprData() {}

// IfData holds data for ExprIf. Else is nil when absent.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (IfData) exprData() {}

// LoopData holds data for ExprLoop. A nil Cond loops until broken out of.
type LoopData struct {
	Label  string
	Extent ExtentID
	Cond   *Expr
	Body   *Block
}

func (LoopData) exprData() {}

// ScopeData holds data for ExprScope.
type ScopeData struct {
	Extent ExtentID
	Value  *Expr
}

func (ScopeData) exprData() {}

// AssignData holds data for ExprAssign.
type AssignData struct {
	LHS *Expr
	RHS *Expr
}

func (AssignData) exprData() {}

// AssignOpData holds data for ExprAssignOp.
type AssignOpData struct {
	Op  BinaryOp
	LHS *Expr
	RHS *Expr
}

func (AssignOpData) exprData() {}

// BreakData holds data for ExprBreak. An empty label targets the innermost loop.
type BreakData struct {
	Label string
}

func (BreakData) exprData() {}

// ContinueData holds data for ExprContinue.
type ContinueData struct {
	Label string
}

func (ContinueData) exprData() {}

// ReturnData holds data for ExprReturn. Value is nil for a bare return.
type ReturnData struct {
	Value *Expr
}

func (ReturnData) exprData() {}

// IsPlace reports whether e denotes a memory location.
func (e *Expr) IsPlace() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ExprVarRef:
		return true
	case ExprField:
		return e.Data.(FieldData).Object.IsPlace()
	case ExprIndex:
		return e.Data.(IndexData).Object.IsPlace()
	case ExprUnary:
		return e.Data.(UnaryData).Op == UnaryDeref
	case ExprScope:
		return e.Data.(ScopeData).Value.IsPlace()
	}
	return false
}
