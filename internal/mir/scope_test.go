package mir_test

import (
	"errors"
	"reflect"
	"testing"

	"mirbuild/internal/diag"
	"mirbuild/internal/mir"
	"mirbuild/internal/testkit"
	"mirbuild/internal/types"
)

func TestPopScopeEmitsDropsInReverse(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	h := mir.NewHarness(in)

	bb0 := h.NewBlock()
	s := h.Push(1, bb0)
	a := h.Temp(str)
	b := h.Temp(in.Builtins().Int)
	c := h.Temp(str)
	for _, id := range []mir.LocalID{a, b, c} {
		if err := h.ScheduleDrop(s, id, h.Func().Locals[id].Type); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	end, err := h.Pop(1, bb0)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if end == bb0 {
		t.Fatalf("expected drops in a fresh block")
	}
	drops, last := testkit.DropsAlong(h.Func(), bb0, mir.NoBlockID)
	if last != end {
		t.Fatalf("chain ends at bb%d, want bb%d", last, end)
	}
	if want := []string{"L2", "L0"}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
	if h.Depth() != 0 || h.Innermost() != mir.NoScopeID {
		t.Fatalf("stack not empty: depth=%d", h.Depth())
	}
	for _, ins := range h.Func().Blocks[end].Instrs {
		if ins.Scope != s {
			t.Errorf("drop attributed to s%d, want s%d", ins.Scope, s)
		}
	}
}

func TestPopScopeWithoutDropsKeepsBlock(t *testing.T) {
	in := types.NewInterner()
	h := mir.NewHarness(in)
	bb0 := h.NewBlock()
	h.Push(1, bb0)
	end, err := h.Pop(1, bb0)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if end != bb0 {
		t.Fatalf("end = bb%d, want bb%d", end, bb0)
	}
	if len(h.Func().Blocks) != 1 {
		t.Fatalf("unexpected blocks: %d", len(h.Func().Blocks))
	}
}

func TestScopeParents(t *testing.T) {
	in := types.NewInterner()
	h := mir.NewHarness(in)
	bb0 := h.NewBlock()
	s0 := h.Push(1, bb0)
	s1 := h.Push(2, bb0)
	if _, err := h.Pop(2, bb0); err != nil {
		t.Fatal(err)
	}
	s2 := h.Push(3, bb0)

	scopes := h.Func().Scopes
	if scopes[s0].Parent != mir.NoScopeID {
		t.Errorf("s0 parent = %d", scopes[s0].Parent)
	}
	if scopes[s1].Parent != s0 || scopes[s2].Parent != s0 {
		t.Errorf("parents = %d, %d; want %d", scopes[s1].Parent, scopes[s2].Parent, s0)
	}
	if h.Innermost() != s2 {
		t.Errorf("innermost = s%d, want s%d", h.Innermost(), s2)
	}
}

func TestExitScopeUnwindsWithoutPopping(t *testing.T) {
	in := types.NewInterner()
	str := in.Builtins().String
	h := mir.NewHarness(in)

	bb0 := h.NewBlock()
	target := h.NewBlock()
	outer := h.Push(1, bb0)
	x := h.Temp(str)
	if err := h.ScheduleDrop(outer, x, str); err != nil {
		t.Fatal(err)
	}
	h.Push(2, bb0)
	inner := h.Push(3, bb0)
	y := h.Temp(str)
	if err := h.ScheduleDrop(inner, y, str); err != nil {
		t.Fatal(err)
	}

	if err := h.Exit(1, bb0, target); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if h.Depth() != 3 {
		t.Fatalf("exit must not pop: depth=%d", h.Depth())
	}
	drops, end := testkit.DropsAlong(h.Func(), bb0, target)
	if end != target {
		t.Fatalf("chain ends at bb%d, want bb%d", end, target)
	}
	if want := []string{"L1", "L0"}; !reflect.DeepEqual(drops, want) {
		t.Fatalf("drops = %v, want %v", drops, want)
	}
	// One cleanup block per scope with drops.
	if got := len(h.Func().Blocks); got != 4 {
		t.Fatalf("blocks = %d, want 4", got)
	}
}

func TestScopeErrors(t *testing.T) {
	in := types.NewInterner()

	tests := []struct {
		name string
		run  func(h *mir.Harness) error
		want error
		code diag.Code
	}{
		{
			name: "pop empty",
			run: func(h *mir.Harness) error {
				_, err := h.Pop(1, h.NewBlock())
				return err
			},
			want: mir.ErrScopeUnderflow,
			code: diag.MirScopeUnderflow,
		},
		{
			name: "pop out of order",
			run: func(h *mir.Harness) error {
				bb := h.NewBlock()
				h.Push(1, bb)
				h.Push(2, bb)
				_, err := h.Pop(1, bb)
				return err
			},
			want: mir.ErrScopeMismatch,
			code: diag.MirScopeMismatch,
		},
		{
			name: "exit to absent extent",
			run: func(h *mir.Harness) error {
				bb := h.NewBlock()
				h.Push(1, bb)
				return h.Exit(7, bb, h.NewBlock())
			},
			want: mir.ErrScopeUnderflow,
			code: diag.MirScopeUnderflow,
		},
		{
			name: "drop into inactive scope",
			run: func(h *mir.Harness) error {
				bb := h.NewBlock()
				s := h.Push(1, bb)
				if _, err := h.Pop(1, bb); err != nil {
					return err
				}
				return h.ScheduleDrop(s, h.Temp(in.Builtins().String), in.Builtins().String)
			},
			want: mir.ErrScopeUnderflow,
			code: diag.MirScopeUnderflow,
		},
		{
			name: "push into sealed block",
			run: func(h *mir.Harness) error {
				bb := h.NewBlock()
				h.Push(1, bb)
				if err := h.Goto(bb, h.NewBlock()); err != nil {
					return err
				}
				return h.AssignUnit(bb, h.Temp(in.Builtins().Unit))
			},
			want: mir.ErrSealedBlock,
			code: diag.MirSealedBlock,
		},
		{
			name: "terminate twice",
			run: func(h *mir.Harness) error {
				bb := h.NewBlock()
				h.Push(1, bb)
				next := h.NewBlock()
				if err := h.Goto(bb, next); err != nil {
					return err
				}
				return h.Goto(bb, next)
			},
			want: mir.ErrSealedBlock,
			code: diag.MirSealedBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(mir.NewHarness(in))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			ie, ok := mir.AsInternal(err)
			if !ok {
				t.Fatalf("expected *InternalError, got %T", err)
			}
			if ie.Code != tt.code {
				t.Errorf("code = %s, want %s", ie.Code.ID(), tt.code.ID())
			}
		})
	}
}

func TestFindLoop(t *testing.T) {
	in := types.NewInterner()
	h := mir.NewHarness(in)
	outerC, outerB := h.NewBlock(), h.NewBlock()
	innerC, innerB := h.NewBlock(), h.NewBlock()
	h.PushLoop("outer", 1, outerC, outerB)
	h.PushLoop("", 2, innerC, innerB)

	tests := []struct {
		label      string
		wantC      mir.BlockID
		wantB      mir.BlockID
		wantErrors bool
	}{
		{label: "", wantC: innerC, wantB: innerB},
		{label: "outer", wantC: outerC, wantB: outerB},
		{label: "missing", wantErrors: true},
	}
	for _, tt := range tests {
		t.Run("label="+tt.label, func(t *testing.T) {
			c, b, err := h.FindLoop(tt.label)
			if tt.wantErrors {
				if !errors.Is(err, mir.ErrLabelNotFound) {
					t.Fatalf("err = %v, want ErrLabelNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c != tt.wantC || b != tt.wantB {
				t.Fatalf("got (bb%d, bb%d), want (bb%d, bb%d)", c, b, tt.wantC, tt.wantB)
			}
		})
	}

	if h.PopLoop() {
		t.Errorf("inner loop was never broken out of")
	}
	if _, _, err := h.FindLoop(""); err != nil {
		t.Fatalf("outer loop should remain: %v", err)
	}
	h.PopLoop()
	if _, _, err := h.FindLoop(""); !errors.Is(err, mir.ErrLabelNotFound) {
		t.Fatalf("err = %v, want ErrLabelNotFound", err)
	}
}
