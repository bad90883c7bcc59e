package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// Harness drives the scope stack, loop registry and cfg builder directly.
type Harness struct {
	l *funcLowerer
}

func NewHarness(in *types.Interner) *Harness {
	l := &funcLowerer{
		in:      in,
		drops:   in,
		f:       &Func{Name: "harness", Result: in.Builtins().Unit},
		locals:  make(map[hir.BindingID]LocalID),
		unitTmp: NoLocalID,
	}
	l.cfg = cfg{f: l.f}
	return &Harness{l: l}
}

func (h *Harness) Func() *Func                  { return h.l.f }
func (h *Harness) NewBlock() BlockID            { return h.l.cfg.startNewBlock() }
func (h *Harness) Innermost() ScopeID           { return h.l.innermostScope() }
func (h *Harness) Depth() int                   { return len(h.l.scopes) }
func (h *Harness) Temp(ty types.TypeID) LocalID { return h.l.newTemp(ty, "", source.Span{}) }

func (h *Harness) Push(extent hir.ExtentID, block BlockID) ScopeID {
	return h.l.pushScope(extent, block, source.Span{})
}

func (h *Harness) Pop(extent hir.ExtentID, block BlockID) (BlockID, error) {
	return h.l.popScope(source.Span{}, extent, block)
}

func (h *Harness) Exit(extent hir.ExtentID, block, target BlockID) error {
	return h.l.exitScope(source.Span{}, extent, block, target)
}

func (h *Harness) ScheduleDrop(scope ScopeID, local LocalID, ty types.TypeID) error {
	return h.l.scheduleDrop(scope, LocalPlace(local), ty, source.Span{})
}

func (h *Harness) PushLoop(label string, extent hir.ExtentID, continueBB, breakBB BlockID) {
	h.l.pushLoop(label, extent, continueBB, breakBB)
}

func (h *Harness) FindLoop(label string) (continueBB, breakBB BlockID, err error) {
	loop, err := h.l.findLoop(source.Span{}, label)
	if err != nil {
		return NoBlockID, NoBlockID, err
	}
	return loop.continueBB, loop.breakBB, nil
}

func (h *Harness) PopLoop() (mightBreak bool) {
	return h.l.popLoop().mightBreak
}

func (h *Harness) AssignUnit(block BlockID, dst LocalID) error {
	return h.l.cfg.pushAssignUnit(block, h.l.innermostScope(), source.Span{}, LocalPlace(dst), h.l.unit())
}

func (h *Harness) Goto(from, to BlockID) error {
	return h.l.cfg.gotoBlock(from, h.l.innermostScope(), source.Span{}, to)
}
