package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/types"
)

func (l *funcLowerer) constOperand(ty types.TypeID, lit hir.LiteralData) Operand {
	c := Const{Type: ty}
	switch lit.Kind {
	case hir.LiteralInt:
		c.Kind = ConstInt
		c.IntValue = lit.IntValue
	case hir.LiteralFloat:
		c.Kind = ConstFloat
		c.FloatValue = lit.FloatValue
	case hir.LiteralBool:
		c.Kind = ConstBool
		c.BoolValue = lit.BoolValue
	case hir.LiteralString:
		c.Kind = ConstString
		c.StringValue = lit.StringValue
	default:
		c.Kind = ConstUnit
	}
	return Operand{Kind: OperandConst, Type: ty, Const: c}
}
