package mir

import (
	"fmt"
	"io"
	"strings"

	"mirbuild/internal/types"
)

// DumpOptions configures MIR module dumping.
type DumpOptions struct {
	// Scopes prints the scope tree and tags every instruction and
	// terminator with the scope it was emitted in.
	Scopes bool
}

// DumpModule writes a human-readable representation of a MIR module.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "funcs=%d\n", len(m.Funcs)); err != nil {
		return err
	}
	for _, f := range m.Funcs {
		if err := DumpFunc(w, f, typesIn, opts); err != nil {
			return err
		}
	}
	return nil
}

// DumpFunc writes one function.
func DumpFunc(w io.Writer, f *Func, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || f == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nfn %s -> %s:\n", f.Name, typeStr(typesIn, f.Result))

	if opts.Scopes {
		sb.WriteString("  scopes:\n")
		for i, s := range f.Scopes {
			parent := "-"
			if s.Parent != NoScopeID {
				parent = fmt.Sprintf("s%d", s.Parent)
			}
			fmt.Fprintf(&sb, "    s%d: e%d parent=%s entry=bb%d\n", i, s.Extent, parent, s.Entry)
		}
	}

	sb.WriteString("  locals:\n")
	for i := range f.Locals {
		l := &f.Locals[i]
		name := l.Name
		if name == "" {
			name = "_"
		}
		mut := ""
		if l.Mutable {
			mut = ",mut"
		}
		fmt.Fprintf(&sb, "    L%d: %s [%s%s] name=%s\n", i, typeStr(typesIn, l.Type), l.Kind, mut, name)
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		label := ""
		switch bb.ID {
		case f.Entry:
			label = " (entry)"
		case f.ReturnBlock:
			label = " (return)"
		}
		fmt.Fprintf(&sb, "  bb%d:%s\n", bb.ID, label)
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			sb.WriteString("    " + FormatInstr(ins))
			if opts.Scopes {
				fmt.Fprintf(&sb, "  // s%d", ins.Scope)
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("    " + FormatTerm(&bb.Term))
		if opts.Scopes && bb.Term.Kind != TermNone {
			fmt.Fprintf(&sb, "  // s%d", bb.Term.Scope)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatInstr renders one instruction without scope information.
func FormatInstr(ins *Instr) string {
	if ins == nil {
		return "<instr?>"
	}
	switch ins.Kind {
	case InstrAssign:
		return fmt.Sprintf("%s = %s", FormatPlace(ins.Assign.Dst), formatRValue(&ins.Assign.Src))
	case InstrCall:
		return fmt.Sprintf("%s = call %s(%s)", FormatPlace(ins.Call.Dst), ins.Call.Callee, formatOperands(ins.Call.Args))
	case InstrDrop:
		return fmt.Sprintf("drop %s", FormatPlace(ins.Drop.Place))
	default:
		return "<instr?>"
	}
}

// FormatTerm renders a terminator.
func FormatTerm(term *Terminator) string {
	if term == nil {
		return "<term?>"
	}
	switch term.Kind {
	case TermNone:
		return "<unterminated>"
	case TermReturn:
		return "return"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", term.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if %s then bb%d else bb%d", formatOperand(&term.If.Cond), term.If.Then, term.If.Else)
	case TermUnreachable:
		return "unreachable"
	default:
		return "<term?>"
	}
}

// FormatPlace renders a place: L3, ret, (*L1).#0, L2[L5].
func FormatPlace(p Place) string {
	var out string
	switch p.Kind {
	case PlaceReturn:
		out = "ret"
	default:
		if p.Local == NoLocalID {
			return "L?"
		}
		out = fmt.Sprintf("L%d", p.Local)
	}
	for _, proj := range p.Proj {
		switch proj.Kind {
		case PlaceProjDeref:
			out = fmt.Sprintf("(*%s)", out)
		case PlaceProjField:
			if proj.FieldName != "" {
				out += "." + proj.FieldName
			} else {
				out += fmt.Sprintf(".#%d", proj.FieldIdx)
			}
		case PlaceProjIndex:
			out += fmt.Sprintf("[L%d]", proj.IndexLocal)
		}
	}
	return out
}

func formatOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i := range ops {
		parts[i] = formatOperand(&ops[i])
	}
	return strings.Join(parts, ", ")
}

func formatOperand(op *Operand) string {
	if op == nil {
		return "<op?>"
	}
	switch op.Kind {
	case OperandConst:
		return formatConst(&op.Const)
	case OperandCopy:
		return fmt.Sprintf("copy %s", FormatPlace(op.Place))
	case OperandMove:
		return fmt.Sprintf("move %s", FormatPlace(op.Place))
	default:
		return "<op?>"
	}
}

func formatConst(c *Const) string {
	switch c.Kind {
	case ConstUnit:
		return "const ()"
	case ConstInt:
		return fmt.Sprintf("const %d", c.IntValue)
	case ConstFloat:
		return fmt.Sprintf("const %g", c.FloatValue)
	case ConstBool:
		return fmt.Sprintf("const %t", c.BoolValue)
	case ConstString:
		return fmt.Sprintf("const %q", c.StringValue)
	default:
		return "const ?"
	}
}

func formatRValue(rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return formatOperand(&rv.Use)
	case RValueUnary:
		return fmt.Sprintf("(%v %s)", rv.Unary.Op, formatOperand(&rv.Unary.Operand))
	case RValueBinary:
		return fmt.Sprintf("(%s %v %s)", formatOperand(&rv.Binary.Left), rv.Binary.Op, formatOperand(&rv.Binary.Right))
	case RValueTuple:
		return "(" + formatOperands(rv.Tuple.Elems) + ")"
	case RValueRef:
		if rv.Ref.Mutable {
			return "&mut " + FormatPlace(rv.Ref.Place)
		}
		return "&" + FormatPlace(rv.Ref.Place)
	default:
		return "<rvalue?>"
	}
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil {
		return fmt.Sprintf("type#%d", id)
	}
	return typesIn.Format(id)
}
