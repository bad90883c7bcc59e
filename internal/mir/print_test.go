package mir_test

import (
	"strings"
	"testing"

	"mirbuild/internal/hir"
	"mirbuild/internal/mir"
	"mirbuild/internal/testkit"
	"mirbuild/internal/types"
)

func TestDumpModule(t *testing.T) {
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Int)
	f := lower(t, in, b.Finish(b.Block(b.Int(7))))

	var sb strings.Builder
	if err := mir.DumpModule(&sb, &mir.Module{Name: "m", Funcs: []*mir.Func{f}}, in, mir.DumpOptions{}); err != nil {
		t.Fatal(err)
	}
	want := `funcs=1

fn f -> int:
  locals:
  bb0: (entry)
    ret = const 7
    goto bb1
  bb1: (return)
    return
`
	if got := sb.String(); got != want {
		t.Fatalf("dump =\n%s\nwant\n%s", got, want)
	}
}

func TestDumpScopes(t *testing.T) {
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	b.Param("p", in.Builtins().String)
	f := lower(t, in, b.Finish(b.Block(nil)))

	var sb strings.Builder
	if err := mir.DumpFunc(&sb, f, in, mir.DumpOptions{Scopes: true}); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		"  scopes:\n    s0: e1 parent=- entry=bb0\n",
		"    s1: e",
		"L0: string [arg] name=p",
		"drop L0  // s0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestFormat(t *testing.T) {
	in := types.NewInterner()
	integer := in.Builtins().Int
	idx := mir.LocalPlace(1).Project(mir.PlaceProj{Kind: mir.PlaceProjIndex, IndexLocal: 5})
	field := mir.LocalPlace(2).
		Project(mir.PlaceProj{Kind: mir.PlaceProjDeref}).
		Project(mir.PlaceProj{Kind: mir.PlaceProjField, FieldIdx: 0})

	tests := []struct {
		name string
		ins  mir.Instr
		want string
	}{
		{
			name: "binary",
			ins: mir.Instr{Kind: mir.InstrAssign, Assign: mir.AssignInstr{
				Dst: idx,
				Src: mir.RValue{Kind: mir.RValueBinary, Binary: mir.BinaryOp{
					Op:    hir.BinAdd,
					Left:  mir.Operand{Kind: mir.OperandCopy, Type: integer, Place: idx},
					Right: mir.Operand{Kind: mir.OperandConst, Type: integer, Const: mir.Const{Kind: mir.ConstInt, IntValue: 2}},
				}},
			}},
			want: "L1[L5] = (copy L1[L5] + const 2)",
		},
		{
			name: "call",
			ins: mir.Instr{Kind: mir.InstrCall, Call: mir.CallInstr{
				Dst:    mir.LocalPlace(0),
				Callee: "f",
				Args:   []mir.Operand{{Kind: mir.OperandMove, Place: field}, mir.UnitOperand(in.Builtins().Unit)},
			}},
			want: "L0 = call f(move (*L2).#0, const ())",
		},
		{
			name: "ref",
			ins: mir.Instr{Kind: mir.InstrAssign, Assign: mir.AssignInstr{
				Dst: mir.ReturnPlace(),
				Src: mir.RValue{Kind: mir.RValueRef, Ref: mir.RefOp{Place: mir.LocalPlace(3), Mutable: true}},
			}},
			want: "ret = &mut L3",
		},
		{
			name: "drop",
			ins:  mir.Instr{Kind: mir.InstrDrop, Drop: mir.DropInstr{Place: mir.LocalPlace(4)}},
			want: "drop L4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mir.FormatInstr(&tt.ins); got != tt.want {
				t.Errorf("FormatInstr = %q, want %q", got, tt.want)
			}
		})
	}
}
