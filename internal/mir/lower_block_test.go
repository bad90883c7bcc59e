package mir_test

import (
	"reflect"
	"strings"
	"testing"

	"mirbuild/internal/hir"
	"mirbuild/internal/mir"
	"mirbuild/internal/testkit"
	"mirbuild/internal/types"
)

func lower(t *testing.T, in *types.Interner, fn *hir.Func) *mir.Func {
	t.Helper()
	if err := testkit.CheckSpanInvariants(fn); err != nil {
		t.Fatalf("bad input: %v", err)
	}
	f, err := mir.LowerFunc(fn, in, mir.Options{})
	if err != nil {
		t.Fatalf("LowerFunc: %v", err)
	}
	if err := mir.ValidateFunc(f, in); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return f
}

func place(f *mir.Func, name string) string {
	return mir.FormatPlace(mir.LocalPlace(testkit.LocalNamed(f, name)))
}

func TestEmptyBlockWritesUnit(t *testing.T) {
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	f := lower(t, in, b.Finish(b.Block(nil)))

	if got, want := testkit.Instrs(f, f.Entry), []string{"ret = const ()"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("entry = %v, want %v", got, want)
	}
	if f.Blocks[f.Entry].Term.Kind != mir.TermGoto || f.Blocks[f.Entry].Term.Goto.Target != f.ReturnBlock {
		t.Fatalf("entry must jump to the return block, got %s", mir.FormatTerm(&f.Blocks[f.Entry].Term))
	}
	if len(f.Scopes) != 2 || f.Scopes[1].Parent != 0 {
		t.Fatalf("scopes = %+v", f.Scopes)
	}
}

func TestTailWrittenToDestination(t *testing.T) {
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Int)
	f := lower(t, in, b.Finish(b.Block(b.Int(7))))

	if got, want := testkit.Instrs(f, f.Entry), []string{"ret = const 7"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("entry = %v, want %v", got, want)
	}
}

func TestLetWithoutInitDeclaresOnly(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	s := b.Bind("s", str)
	f := lower(t, in, b.Finish(b.Block(nil, b.Let(s, nil))))

	sp := place(f, "s")
	for i := range f.Blocks {
		for _, ins := range testkit.Instrs(f, f.Blocks[i].ID) {
			if strings.HasPrefix(ins, sp+" = ") {
				t.Fatalf("unexpected store %q", ins)
			}
		}
	}
	drops, end := testkit.DropsAlong(f, f.Entry, f.ReturnBlock)
	if end != f.ReturnBlock {
		t.Fatalf("chain ends at bb%d", end)
	}
	if want := []string{sp}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
}

func TestLetDropsInReverseOrder(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	x := b.Bind("a", str)
	y := b.Bind("b", in.Builtins().Int)
	z := b.Bind("c", str)
	body := b.Block(nil,
		b.Let(x, b.Call("mk", str)),
		b.Let(y, b.Int(1)),
		b.Let(z, b.Call("mk", str)),
	)
	f := lower(t, in, b.Finish(body))

	drops, _ := testkit.DropsAlong(f, f.Entry, f.ReturnBlock)
	if want := []string{place(f, "c"), place(f, "a")}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
}

func TestLetThenCall(t *testing.T) {
	// { let x = f(); g(x); }
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "main", in.Builtins().Unit)
	x := b.Bind("x", str)
	body := b.Block(nil,
		b.Let(x, b.Call("f", str)),
		b.Stmt(b.Call("g", in.Builtins().Unit, b.Var(x))),
	)
	f := lower(t, in, b.Finish(body))

	xp := place(f, "x")
	unit := place(f, "tmp_unit")
	arg := place(f, "tmp_0")
	want := []string{
		xp + " = call f()",
		arg + " = move " + xp,
		unit + " = call g(move " + arg + ")",
		"ret = const ()",
	}
	if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, want) {
		t.Fatalf("entry =\n%v\nwant\n%v", got, want)
	}
	drops, end := testkit.DropsAlong(f, f.Entry, f.ReturnBlock)
	if end != f.ReturnBlock || !reflect.DeepEqual(drops, []string{xp}) {
		t.Fatalf("drops = %v ending at bb%d", drops, end)
	}
}

func TestTuplePatternMovesApart(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	a := b.Bind("a", str)
	pat := b.TuplePat(a, b.Wild(str))
	body := b.Block(nil, b.Let(pat, b.Tuple(b.Call("mk", str), b.Call("mk", str))))
	f := lower(t, in, b.Finish(body))

	// Locals: a, the tuple temporary, then one temporary per element.
	want := []string{
		"L2 = call mk()",
		"L3 = call mk()",
		"L1 = (move L2, move L3)",
		"L0 = move L1.#0",
		"drop L1.#1",
		"ret = const ()",
	}
	if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, want) {
		t.Fatalf("entry =\n%v\nwant\n%v", got, want)
	}
	drops, _ := testkit.DropsAlong(f, f.Entry, f.ReturnBlock)
	if !reflect.DeepEqual(drops, []string{"L1.#1", "L0"}) {
		t.Fatalf("drops = %v", drops)
	}
}

func TestParamsDroppedAtReturn(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	b.Param("p", str)
	b.Param("q", str)
	f := lower(t, in, b.Finish(b.Block(nil)))

	if len(f.Params) != 2 || f.Locals[f.Params[0]].Kind != mir.LocalArg {
		t.Fatalf("params = %v", f.Params)
	}
	drops, _ := testkit.DropsAlong(f, f.Entry, f.ReturnBlock)
	if want := []string{"L1", "L0"}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
}

func TestNestedBlockValue(t *testing.T) {
	in := types.NewInterner()
	i := in.Builtins().Int
	b := testkit.NewFunc(in, "f", i)
	x := b.Bind("x", i)
	inner := b.Block(b.Var(x), b.Let(x, b.Int(3)))
	f := lower(t, in, b.Finish(b.Block(b.BlockExpr(inner, i))))

	want := []string{"L0 = const 3", "ret = copy L0"}
	if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, want) {
		t.Fatalf("entry = %v, want %v", got, want)
	}
}
