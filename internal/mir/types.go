package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32
type ScopeID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
	NoScopeID ScopeID = -1
)

// LocalKind tells parameters, user variables and compiler temporaries apart.
type LocalKind uint8

const (
	LocalArg LocalKind = iota
	LocalVar
	LocalTemp
)

func (k LocalKind) String() string {
	switch k {
	case LocalArg:
		return "arg"
	case LocalVar:
		return "var"
	case LocalTemp:
		return "temp"
	default:
		return "?"
	}
}

type Local struct {
	Name    string
	Type    types.TypeID
	Kind    LocalKind
	Binding hir.BindingID
	Mutable bool
	Span    source.Span
}

type PlaceProjKind uint8

const (
	PlaceProjDeref PlaceProjKind = iota
	PlaceProjField
	PlaceProjIndex
)

type PlaceProj struct {
	Kind PlaceProjKind

	FieldName  string
	FieldIdx   int
	IndexLocal LocalID
}

type PlaceKind uint8

const (
	PlaceLocal PlaceKind = iota
	// PlaceReturn is the function's return slot.
	PlaceReturn
)

type Place struct {
	Kind  PlaceKind
	Local LocalID
	Proj  []PlaceProj
}

// LocalPlace names a whole local.
func LocalPlace(id LocalID) Place {
	return Place{Kind: PlaceLocal, Local: id}
}

// ReturnPlace names the return slot.
func ReturnPlace() Place {
	return Place{Kind: PlaceReturn, Local: NoLocalID}
}

func (p Place) IsValid() bool {
	if p.Kind == PlaceReturn {
		return true
	}
	return p.Local != NoLocalID
}

// IsReturn reports whether p is the bare return slot.
func (p Place) IsReturn() bool {
	return p.Kind == PlaceReturn && len(p.Proj) == 0
}

// Project returns a copy of p extended by proj; p itself is not modified.
func (p Place) Project(proj PlaceProj) Place {
	out := p
	out.Proj = make([]PlaceProj, len(p.Proj), len(p.Proj)+1)
	copy(out.Proj, p.Proj)
	out.Proj = append(out.Proj, proj)
	return out
}

// Equal compares two places structurally.
func (p Place) Equal(other Place) bool {
	if p.Kind != other.Kind || p.Local != other.Local || len(p.Proj) != len(other.Proj) {
		return false
	}
	for i := range p.Proj {
		if p.Proj[i] != other.Proj[i] {
			return false
		}
	}
	return true
}

type OperandKind uint8

const (
	OperandConst OperandKind = iota
	OperandCopy
	OperandMove
)

type Operand struct {
	Kind  OperandKind
	Type  types.TypeID
	Const Const
	Place Place
}

type ConstKind uint8

const (
	ConstUnit ConstKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstString
)

type Const struct {
	Kind ConstKind
	Type types.TypeID

	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

// UnitOperand is the constant ().
func UnitOperand(unit types.TypeID) Operand {
	return Operand{Kind: OperandConst, Type: unit, Const: Const{Kind: ConstUnit, Type: unit}}
}

type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueUnary
	RValueBinary
	RValueTuple
	RValueRef
)

type RValue struct {
	Kind RValueKind

	Use    Operand
	Unary  UnaryOp
	Binary BinaryOp
	Tuple  TupleLit
	Ref    RefOp
}

type UnaryOp struct {
	Op      hir.UnaryOp
	Operand Operand
}

type BinaryOp struct {
	Op    hir.BinaryOp
	Left  Operand
	Right Operand
}

type TupleLit struct {
	Elems []Operand
}

type RefOp struct {
	Place   Place
	Mutable bool
}
