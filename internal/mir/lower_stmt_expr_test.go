package mir_test

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"mirbuild/internal/diag"
	"mirbuild/internal/hir"
	"mirbuild/internal/mir"
	"mirbuild/internal/testkit"
	"mirbuild/internal/trace"
	"mirbuild/internal/types"
)

func TestAssignEvaluatesRightToLeft(t *testing.T) {
	tests := []struct {
		name string
		elem func(*types.Interner) types.TypeID
		want []string
	}{
		{
			name: "copy element",
			elem: func(in *types.Interner) types.TypeID { return in.Builtins().Int },
			want: []string{
				"L4 = copy L2",
				"L3 = copy L0[L4]",
				"L5 = copy L1",
				"L0[L5] = copy L3",
				"ret = const ()",
			},
		},
		{
			name: "drop element",
			elem: func(in *types.Interner) types.TypeID { return in.Builtins().String },
			want: []string{
				"L4 = copy L2",
				"L3 = move L0[L4]",
				"L5 = copy L1",
				"drop L0[L5]",
				"L0[L5] = move L3",
				"ret = const ()",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// x[i] = x[j]
			in := types.NewInterner()
			elem := tt.elem(in)
			arr := in.Intern(types.MakeArray(elem, 4))
			integer := in.Builtins().Int
			b := testkit.NewFunc(in, "f", in.Builtins().Unit)
			x := b.Param("x", arr)
			i := b.Param("i", integer)
			j := b.Param("j", integer)
			assign := b.Assign(b.Index(b.Var(x), b.Var(i), elem), b.Index(b.Var(x), b.Var(j), elem))
			f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(assign))))

			if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("entry =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestAssignOp(t *testing.T) {
	in := types.NewInterner()
	integer := in.Builtins().Int
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	x := b.Param("x", integer)
	f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(b.AssignOp(hir.BinAdd, b.Var(x), b.Int(2))))))

	want := []string{"L0 = (copy L0 + const 2)", "ret = const ()"}
	if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, want) {
		t.Fatalf("entry = %v, want %v", got, want)
	}
}

func TestAssignThroughScope(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *testkit.FuncBuilder, x *hir.Pattern) *hir.Expr
		want  string
	}{
		{
			name: "assign",
			build: func(b *testkit.FuncBuilder, x *hir.Pattern) *hir.Expr {
				return b.Assign(b.Scope(b.Var(x)), b.Int(1))
			},
			want: "L0 = const 1",
		},
		{
			name: "assign op",
			build: func(b *testkit.FuncBuilder, x *hir.Pattern) *hir.Expr {
				return b.AssignOp(hir.BinAdd, b.Scope(b.Var(x)), b.Int(2))
			},
			want: "L0 = (copy L0 + const 2)",
		},
		{
			name: "nested scopes",
			build: func(b *testkit.FuncBuilder, x *hir.Pattern) *hir.Expr {
				return b.Assign(b.Scope(b.Scope(b.Var(x))), b.Int(3))
			},
			want: "L0 = const 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// {x} = 1
			in := types.NewInterner()
			b := testkit.NewFunc(in, "f", in.Builtins().Unit)
			x := b.Param("x", in.Builtins().Int)
			f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(tt.build(b, x)))))

			instrs, end := testkit.Chain(f, f.Entry, f.ReturnBlock)
			if end != f.ReturnBlock {
				t.Fatalf("entry chain ends at bb%d", end)
			}
			if !slices.Contains(instrs, tt.want) {
				t.Fatalf("instrs = %v, want %q", instrs, tt.want)
			}
		})
	}
}

func TestAssignAsValueWritesUnit(t *testing.T) {
	in := types.NewInterner()
	integer := in.Builtins().Int
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	x := b.Param("x", integer)
	f := lower(t, in, b.Finish(b.Block(b.Assign(b.Var(x), b.Int(1)))))

	want := []string{"L0 = const 1", "ret = const ()"}
	if got := testkit.Instrs(f, f.Entry); !reflect.DeepEqual(got, want) {
		t.Fatalf("entry = %v, want %v", got, want)
	}
}

func TestLoweringErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *testkit.FuncBuilder) *hir.Block
		want  error
		code  diag.Code
	}{
		{
			name: "compound assign on string",
			build: func(b *testkit.FuncBuilder) *hir.Block {
				s := b.Param("s", b.In.Builtins().String)
				return b.Block(nil, b.Stmt(b.AssignOp(hir.BinAdd, b.Var(s), b.Str("!"))))
			},
			want: mir.ErrCompoundAssignDrop,
			code: diag.MirCompoundAssignDrop,
		},
		{
			name: "break outside loop",
			build: func(b *testkit.FuncBuilder) *hir.Block {
				return b.Block(nil, b.Stmt(b.Break("")))
			},
			want: mir.ErrLabelNotFound,
			code: diag.MirLabelNotFound,
		},
		{
			name: "unknown label",
			build: func(b *testkit.FuncBuilder) *hir.Block {
				body := b.Block(nil, b.Stmt(b.Continue("nope")))
				return b.Block(nil, b.Stmt(b.Loop("outer", nil, body)))
			},
			want: mir.ErrLabelNotFound,
			code: diag.MirLabelNotFound,
		},
		{
			name: "assign to rvalue",
			build: func(b *testkit.FuncBuilder) *hir.Block {
				return b.Block(nil, b.Stmt(b.Assign(b.Int(1), b.Int(2))))
			},
			want: mir.ErrBadPlace,
			code: diag.MirBadPlace,
		},
		{
			name: "unresolved binding",
			build: func(b *testkit.FuncBuilder) *hir.Block {
				ghost := b.Bind("ghost", b.In.Builtins().Int)
				return b.Block(b.Var(ghost))
			},
			want: mir.ErrUnknownBinding,
			code: diag.MirUnknownBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := types.NewInterner()
			b := testkit.NewFunc(in, "f", in.Builtins().Unit)
			_, err := mir.LowerFunc(b.Finish(tt.build(b)), in, mir.Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			ie, ok := mir.AsInternal(err)
			if !ok || ie.Code != tt.code {
				t.Fatalf("got %#v, want code %s", ie, tt.code.ID())
			}
		})
	}
}

func TestBreakRunsCleanup(t *testing.T) {
	// loop { let s = mk(); break; }
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	s := b.Bind("s", str)
	body := b.Block(nil, b.Let(s, b.Call("mk", str)), b.Stmt(b.Break("")))
	f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(b.Loop("", nil, body)))))

	mk, _, ok := testkit.FindCall(f, "mk")
	if !ok {
		t.Fatal("no call to mk")
	}
	drops, end := testkit.DropsAlong(f, mk, f.ReturnBlock)
	if end != f.ReturnBlock {
		t.Fatalf("break path ends at bb%d", end)
	}
	if want := []string{place(f, "s")}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
	if got := testkit.CountReachableDrops(f)[place(f, "s")]; got != 1 {
		t.Fatalf("s dropped %d times on reachable paths", got)
	}
	if !mir.Reachable(f)[f.ReturnBlock] {
		t.Fatal("return block must be reachable")
	}
}

func TestContinueLeavesDeadCode(t *testing.T) {
	// loop { continue; h(); }
	in := types.NewInterner()
	unit := in.Builtins().Unit
	b := testkit.NewFunc(in, "f", unit)
	body := b.Block(nil, b.Stmt(b.Continue("")), b.Stmt(b.Call("h", unit)))
	f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(b.Loop("", nil, body)))))

	h, _, ok := testkit.FindCall(f, "h")
	if !ok {
		t.Fatal("no call to h")
	}
	if preds := testkit.Preds(f)[h]; len(preds) != 0 {
		t.Fatalf("dead block bb%d has predecessors %v", h, preds)
	}
	reach := mir.Reachable(f)
	if reach[h] {
		t.Fatalf("bb%d must be unreachable", h)
	}
	// Never broken out of: the exit, and so the return, is unreachable.
	if reach[f.ReturnBlock] {
		t.Fatal("return block of an endless loop must be unreachable")
	}
	if f.Blocks[f.Entry].Term.Kind != mir.TermGoto {
		t.Fatalf("entry ends in %s", f.Blocks[f.Entry].Term.Kind)
	}
	// The header is entered from the entry and again by continue.
	header := f.Blocks[f.Entry].Term.Goto.Target
	preds := testkit.Preds(f)[header]
	if !slices.Contains(preds, f.Entry) || !slices.Contains(preds, header) {
		t.Fatalf("header bb%d preds = %v", header, preds)
	}
}

func TestContinueRunsCleanup(t *testing.T) {
	// while c { let a = mk_a(); let b = mk_b(); continue; }
	in := types.NewInterner()
	str := in.Builtins().String
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	c := b.Param("c", in.Builtins().Bool)
	pa := b.Bind("a", str)
	pb := b.Bind("b", str)
	body := b.Block(nil,
		b.Let(pa, b.Call("mk_a", str)),
		b.Let(pb, b.Call("mk_b", str)),
		b.Stmt(b.Continue("")))
	f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(b.Loop("", b.Var(c), body)))))

	header := f.Blocks[f.Entry].Term.Goto.Target
	mk, _, ok := testkit.FindCall(f, "mk_b")
	if !ok {
		t.Fatal("no call to mk_b")
	}
	drops, end := testkit.DropsAlong(f, mk, header)
	if end != header {
		t.Fatalf("continue path ends at bb%d, want header bb%d", end, header)
	}
	if want := []string{place(f, "b"), place(f, "a")}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
	if got := testkit.CountReachableDrops(f); got[place(f, "a")] != 1 || got[place(f, "b")] != 1 {
		t.Fatalf("reachable drops = %v", got)
	}
}

func TestLabelledBreakTargetsOuterLoop(t *testing.T) {
	tests := []struct {
		label         string
		wantReachable bool
	}{
		{label: "outer", wantReachable: true},
		{label: "", wantReachable: false},
	}
	for _, tt := range tests {
		t.Run("break '"+tt.label, func(t *testing.T) {
			// 'outer: loop { loop { break <label>; } }
			in := types.NewInterner()
			b := testkit.NewFunc(in, "f", in.Builtins().Unit)
			inner := b.Loop("", nil, b.Block(nil, b.Stmt(b.Break(tt.label))))
			outer := b.Loop("outer", nil, b.Block(nil, b.Stmt(inner)))
			f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(outer))))

			if got := mir.Reachable(f)[f.ReturnBlock]; got != tt.wantReachable {
				t.Fatalf("return reachable = %t, want %t", got, tt.wantReachable)
			}
		})
	}
}

func TestWhileLoopExitWritesUnit(t *testing.T) {
	// while c { x += 1; }
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	c := b.Param("c", in.Builtins().Bool)
	x := b.Param("x", in.Builtins().Int)
	body := b.Block(nil, b.Stmt(b.AssignOp(hir.BinAdd, b.Var(x), b.Int(1))))
	f := lower(t, in, b.Finish(b.Block(nil, b.Stmt(b.Loop("", b.Var(c), body)))))

	header := f.Blocks[f.Entry].Term.Goto.Target
	term := f.Blocks[header].Term
	if term.Kind != mir.TermIf {
		t.Fatalf("header ends in %s", term.Kind)
	}
	exit := term.If.Else
	if got := testkit.Instrs(f, exit); len(got) == 0 || got[0] != place(f, "tmp_unit")+" = const ()" {
		t.Fatalf("exit = %v", got)
	}
	if !mir.Reachable(f)[f.ReturnBlock] {
		t.Fatal("return block must be reachable")
	}
}

func TestReturnUnwindsEveryScope(t *testing.T) {
	// { let a = mk(); { let b = mk(); return 1; } 0 }
	in := types.NewInterner()
	str := in.Builtins().String
	integer := in.Builtins().Int
	b := testkit.NewFunc(in, "f", integer)
	a := b.Bind("a", str)
	bb := b.Bind("b", str)
	inner := b.Block(nil, b.Let(bb, b.Call("mk", str)), b.Stmt(b.Return(b.Int(1))))
	body := b.Block(b.Int(0), b.Let(a, b.Call("mk", str)), b.Stmt(b.BlockExpr(inner, in.Builtins().Unit)))
	f := lower(t, in, b.Finish(body))

	at, _, ok := testkit.FindInstr(f, "ret = const 1")
	if !ok {
		t.Fatal("no store of the return value")
	}
	drops, end := testkit.DropsAlong(f, at, f.ReturnBlock)
	if end != f.ReturnBlock {
		t.Fatalf("return path ends at bb%d", end)
	}
	if want := []string{place(f, "b"), place(f, "a")}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}

	cleanups := 0
	for id := f.Blocks[at].Term.Goto.Target; id != f.ReturnBlock; id = f.Blocks[id].Term.Goto.Target {
		if len(f.Blocks[id].Instrs) > 0 {
			cleanups++
		}
	}
	if cleanups != 2 {
		t.Fatalf("cleanup blocks = %d, want 2", cleanups)
	}
	if got := testkit.CountReachableDrops(f); got[place(f, "a")] != 1 || got[place(f, "b")] != 1 {
		t.Fatalf("reachable drops = %v", got)
	}
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == mir.TermReturn && f.Blocks[i].ID != f.ReturnBlock {
			t.Fatalf("bb%d returns directly", i)
		}
	}
}

func TestIfAndLogical(t *testing.T) {
	// if a && b { 1 } else { 2 }
	in := types.NewInterner()
	boolean := in.Builtins().Bool
	integer := in.Builtins().Int
	b := testkit.NewFunc(in, "f", integer)
	pa := b.Param("a", boolean)
	pb := b.Param("b", boolean)
	cond := b.Binary(hir.BinAnd, boolean, b.Var(pa), b.Var(pb))
	ifExpr := b.If(cond, b.BlockExpr(b.Block(b.Int(1)), integer), b.BlockExpr(b.Block(b.Int(2)), integer), integer)
	f := lower(t, in, b.Finish(b.Block(ifExpr)))

	var ifs int
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == mir.TermIf {
			ifs++
		}
	}
	if ifs != 2 {
		t.Fatalf("if terminators = %d, want 2", ifs)
	}
	if _, _, ok := testkit.FindInstr(f, "ret = const 1"); !ok {
		t.Fatal("then arm missing")
	}
	if _, _, ok := testkit.FindInstr(f, "ret = const 2"); !ok {
		t.Fatal("else arm missing")
	}
	if _, _, ok := testkit.FindInstr(f, "L2 = const false"); !ok {
		t.Fatal("short-circuit store missing")
	}
}

func TestLowerEmitsScopeTrace(t *testing.T) {
	in := types.NewInterner()
	b := testkit.NewFunc(in, "f", in.Builtins().Unit)
	body := b.Block(nil, b.Stmt(b.Loop("", nil, b.Block(nil, b.Stmt(b.Break(""))))))
	ring := trace.NewRingTracer(256, trace.LevelDebug)

	if _, err := mir.LowerFunc(b.Finish(body), in, mir.Options{Tracer: ring}); err != nil {
		t.Fatal(err)
	}
	names := make(map[string]int)
	for _, ev := range ring.Snapshot() {
		names[ev.Name]++
	}
	for _, want := range []string{"lower_func", "scope.push", "scope.pop", "scope.exit", "loop.exit"} {
		if names[want] == 0 {
			t.Errorf("missing %q event; got %v", want, names)
		}
	}
	if names["scope.push"] != names["scope.pop"] {
		t.Errorf("push/pop mismatch: %d vs %d", names["scope.push"], names["scope.pop"])
	}
}

func TestValidateAttributesFunctions(t *testing.T) {
	in := types.NewInterner()
	unit := in.Builtins().Unit
	var funcs []*mir.Func
	for _, name := range []string{"zeta", "alpha", "mid"} {
		b := testkit.NewFunc(in, name, unit)
		funcs = append(funcs, lower(t, in, b.Finish(b.Block(nil))))
	}
	m := &mir.Module{Name: "m", Funcs: funcs}
	mir.SortFuncs(m)
	if m.Funcs[0].Name != "alpha" || m.Funcs[1].Name != "mid" || m.Funcs[2].Name != "zeta" {
		t.Fatalf("funcs = %v", m.Funcs)
	}

	broken := m.Funcs[2]
	broken.Blocks[broken.Entry].Term = mir.Terminator{}
	err := mir.Validate(m, in)
	var fe *mir.FuncError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FuncError", err)
	}
	if fe.Func != broken || !strings.Contains(fe.Error(), "function zeta: ") || !strings.Contains(fe.Error(), "unterminated block") {
		t.Fatalf("FuncError = %v", fe)
	}
}
