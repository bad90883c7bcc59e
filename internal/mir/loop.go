package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
)

// loopScope describes an enclosing loop for break and continue.
type loopScope struct {
	label      string
	extent     hir.ExtentID
	continueBB BlockID
	breakBB    BlockID
	mightBreak bool
}

func (l *funcLowerer) pushLoop(label string, extent hir.ExtentID, continueBB, breakBB BlockID) {
	l.loops = append(l.loops, loopScope{
		label:      label,
		extent:     extent,
		continueBB: continueBB,
		breakBB:    breakBB,
	})
}

// findLoop returns the innermost loop, or the innermost one carrying label.
func (l *funcLowerer) findLoop(span source.Span, label string) (*loopScope, error) {
	for i := len(l.loops) - 1; i >= 0; i-- {
		if label == "" || l.loops[i].label == label {
			return &l.loops[i], nil
		}
	}
	if label == "" {
		return nil, internalErr(ErrLabelNotFound, span, "break or continue outside of a loop")
	}
	return nil, internalErr(ErrLabelNotFound, span, "no enclosing loop labelled '%s", label)
}

// popLoop removes the innermost loop and reports whether it was broken out of.
func (l *funcLowerer) popLoop() loopScope {
	top := l.loops[len(l.loops)-1]
	l.loops = l.loops[:len(l.loops)-1]
	return top
}
