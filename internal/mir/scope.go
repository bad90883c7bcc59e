package mir

import (
	"fmt"

	"fortio.org/safecast"

	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/trace"
	"mirbuild/internal/types"
)

// dropObligation is a place that must be dropped when its scope is exited.
type dropObligation struct {
	place Place
	ty    types.TypeID
	span  source.Span
}

// scope is one entry of the lexical scope stack.
type scope struct {
	id     ScopeID
	extent hir.ExtentID
	drops  []dropObligation
}

// pushScope enters extent. The new scope's parent is the current innermost
// scope.
func (l *funcLowerer) pushScope(extent hir.ExtentID, block BlockID, span source.Span) ScopeID {
	raw, err := safecast.Conv[int32](len(l.f.Scopes))
	if err != nil {
		panic(fmt.Errorf("mir: scope id overflow: %w", err))
	}
	id := ScopeID(raw)
	l.f.Scopes = append(l.f.Scopes, ScopeInfo{
		Extent: extent,
		Parent: l.innermostScope(),
		Entry:  block,
		Span:   span,
	})
	l.scopes = append(l.scopes, scope{id: id, extent: extent})
	l.point("scope.push", "s%d e%d bb%d", id, extent, block)
	return id
}

// popScope leaves the innermost scope, which must be extent. When the scope
// owns drops they are emitted in reverse declaration order into a fresh
// block that block jumps to; that block is returned.
func (l *funcLowerer) popScope(span source.Span, extent hir.ExtentID, block BlockID) (BlockID, error) {
	if len(l.scopes) == 0 {
		return NoBlockID, internalErr(ErrScopeUnderflow, span, "pop of e%d with an empty stack", extent)
	}
	top := l.scopes[len(l.scopes)-1]
	if top.extent != extent {
		return NoBlockID, internalErr(ErrScopeMismatch, span, "pop of e%d but innermost is e%d", extent, top.extent)
	}
	l.scopes = l.scopes[:len(l.scopes)-1]
	l.point("scope.pop", "s%d e%d drops=%d", top.id, extent, len(top.drops))
	if len(top.drops) == 0 {
		return block, nil
	}
	return l.emitDrops(span, top, block)
}

// exitScope leaves every scope from the innermost one out to and including
// extent without popping them, then jumps to target. Each scope with drops
// gets its own cleanup block, innermost first.
func (l *funcLowerer) exitScope(span source.Span, extent hir.ExtentID, block, target BlockID) error {
	depth := -1
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if l.scopes[i].extent == extent {
			depth = i
			break
		}
	}
	if depth < 0 {
		return internalErr(ErrScopeUnderflow, span, "exit to e%d which does not enclose this point", extent)
	}
	innermost := l.innermostScope()
	l.point("scope.exit", "e%d -> bb%d unwinding %d", extent, target, len(l.scopes)-depth)
	for i := len(l.scopes) - 1; i >= depth; i-- {
		if len(l.scopes[i].drops) == 0 {
			continue
		}
		next, err := l.emitDrops(span, l.scopes[i], block)
		if err != nil {
			return err
		}
		block = next
	}
	return l.cfg.gotoBlock(block, innermost, span, target)
}

// emitDrops terminates block with a jump to a fresh block holding the drops
// of s in reverse order.
func (l *funcLowerer) emitDrops(span source.Span, s scope, block BlockID) (BlockID, error) {
	next := l.cfg.startNewBlock()
	if err := l.cfg.gotoBlock(block, s.id, span, next); err != nil {
		return NoBlockID, err
	}
	for i := len(s.drops) - 1; i >= 0; i-- {
		d := s.drops[i]
		if err := l.cfg.pushDrop(next, s.id, d.span, d.place); err != nil {
			return NoBlockID, err
		}
	}
	return next, nil
}

// inScope runs body between pushScope and popScope of extent.
func (l *funcLowerer) inScope(extent hir.ExtentID, block BlockID, span source.Span, body func(BlockID) (BlockID, error)) (BlockID, error) {
	l.pushScope(extent, block, span)
	block, err := body(block)
	if err != nil {
		return NoBlockID, err
	}
	return l.popScope(span, extent, block)
}

// scheduleDrop records that place must be dropped on every exit from the
// scope id. Values whose type needs no drop are ignored.
func (l *funcLowerer) scheduleDrop(id ScopeID, place Place, ty types.TypeID, span source.Span) error {
	if !l.drops.NeedsDrop(ty) {
		return nil
	}
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if l.scopes[i].id == id {
			l.scopes[i].drops = append(l.scopes[i].drops, dropObligation{place: place, ty: ty, span: span})
			return nil
		}
	}
	return internalErr(ErrScopeUnderflow, span, "drop scheduled into s%d which is not active", id)
}

func (l *funcLowerer) innermostScope() ScopeID {
	if len(l.scopes) == 0 {
		return NoScopeID
	}
	return l.scopes[len(l.scopes)-1].id
}

func (l *funcLowerer) point(name, format string, args ...any) {
	if l.tracer == nil || !l.tracer.Enabled() {
		return
	}
	trace.Point(l.tracer, trace.ScopeNode, name, fmt.Sprintf(format, args...), l.traceParent)
}
