package hir

import "fmt"

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota + 1
	UnaryNot
	UnaryDeref
	UnaryRef
	UnaryRefMut
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryDeref:
		return "*"
	case UnaryRef:
		return "&"
	case UnaryRefMut:
		return "&mut"
	default:
		return fmt.Sprintf("UnaryOp(%d)", op)
	}
}

// BinaryOp enumerates infix operators. Compound assignment reuses the
// arithmetic and bitwise subset.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota + 1
	BinSub
	BinMul
	BinDiv
	BinRem
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

var binaryOpText = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinRem: "%",
	BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^", BinShl: "<<", BinShr: ">>",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) && binaryOpText[op] != "" {
		return binaryOpText[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// IsComparison reports whether op yields bool from two operands.
func (op BinaryOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

// IsLogical reports whether op is && or ||.
func (op BinaryOp) IsLogical() bool {
	return op == BinAnd || op == BinOr
}

// IsCompoundable reports whether op may appear in "x op= y".
func (op BinaryOp) IsCompoundable() bool {
	return op >= BinAdd && op <= BinShr
}

// ParseBinaryOp maps operator text ("+", "<<", "&&") to a BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, text := range binaryOpText {
		if text != "" && text == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// ParseUnaryOp maps operator text to a UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	switch s {
	case "-":
		return UnaryNeg, true
	case "!":
		return UnaryNot, true
	case "*":
		return UnaryDeref, true
	case "&":
		return UnaryRef, true
	case "&mut":
		return UnaryRefMut, true
	}
	return 0, false
}
