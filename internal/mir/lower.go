package mir

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/trace"
	"mirbuild/internal/types"
)

// DropOracle answers whether values of a type own resources that must be
// released. *types.Interner implements it.
type DropOracle interface {
	NeedsDrop(types.TypeID) bool
}

// Options tunes lowering.
type Options struct {
	// Drop overrides the interner's drop analysis.
	Drop DropOracle
	// Tracer receives a span per function and node-level scope events.
	Tracer      trace.Tracer
	TraceParent uint64
}

type funcLowerer struct {
	in    *types.Interner
	drops DropOracle
	f     *Func
	cfg   cfg

	scopes []scope
	loops  []loopScope
	locals map[hir.BindingID]LocalID

	fnExtent hir.ExtentID
	unitTmp  LocalID
	nextTemp int

	tracer      trace.Tracer
	traceParent uint64
}

// SortFuncs orders m.Funcs by name.
func SortFuncs(m *Module) {
	sort.SliceStable(m.Funcs, func(i, j int) bool {
		return m.Funcs[i].Name < m.Funcs[j].Name
	})
}

// LowerFunc builds the control-flow graph of fn.
//
// The graph starts at Entry with the call-site scope entered and the
// parameters declared in it. The body is lowered into the return slot, the
// call-site scope is popped and control reaches ReturnBlock, the only block
// ending in TermReturn. Every early return exits to ReturnBlock as well.
func LowerFunc(fn *hir.Func, in *types.Interner, opts Options) (*Func, error) {
	span := trace.Begin(opts.Tracer, trace.ScopeFunc, "lower_func", opts.TraceParent).WithExtra("fn", fn.Name)
	defer span.End("")

	id, err := safecast.Conv[int32](fn.ID)
	if err != nil {
		return nil, fmt.Errorf("mir: func id overflow: %w", err)
	}
	l := &funcLowerer{
		in:    in,
		drops: opts.Drop,
		f: &Func{
			ID:     FuncID(id),
			Name:   fn.Name,
			Span:   fn.Span,
			Result: fn.Result,
		},
		locals:      make(map[hir.BindingID]LocalID, fn.Bindings),
		fnExtent:    fn.Extent,
		unitTmp:     NoLocalID,
		tracer:      opts.Tracer,
		traceParent: span.ID(),
	}
	if l.drops == nil {
		l.drops = in
	}
	l.cfg = cfg{f: l.f}
	if err := l.lowerFunc(fn); err != nil {
		return nil, err
	}
	return l.f, nil
}

func (l *funcLowerer) lowerFunc(fn *hir.Func) error {
	entry := l.cfg.startNewBlock()
	l.f.Entry = entry
	l.f.ReturnBlock = l.cfg.startNewBlock()

	callSite := l.pushScope(fn.Extent, entry, fn.Span)
	for _, p := range fn.Params {
		local := l.declareLocal(p.Binding, p.Name, p.Type, LocalArg, false, p.Span)
		l.f.Params = append(l.f.Params, local)
		if err := l.scheduleDrop(callSite, LocalPlace(local), p.Type, p.Span); err != nil {
			return err
		}
	}

	block, err := l.lowerBlock(ReturnPlace(), entry, fn.Body)
	if err != nil {
		return err
	}
	block, err = l.popScope(fn.Span, fn.Extent, block)
	if err != nil {
		return err
	}
	if len(l.scopes) != 0 {
		return internalErr(ErrScopeMismatch, fn.Span, "%d scopes left open", len(l.scopes))
	}
	if err := l.cfg.gotoBlock(block, callSite, fn.Span, l.f.ReturnBlock); err != nil {
		return err
	}
	if err := l.cfg.terminate(l.f.ReturnBlock, callSite, fn.Span, Terminator{Kind: TermReturn}); err != nil {
		return err
	}

	for i := range l.f.Blocks {
		if !l.f.Blocks[i].Terminated() {
			l.f.Blocks[i].Term = Terminator{Kind: TermUnreachable, Scope: callSite, Span: fn.Span}
		}
	}
	return nil
}

func (l *funcLowerer) addLocal(loc Local) LocalID {
	raw, err := safecast.Conv[int32](len(l.f.Locals))
	if err != nil {
		panic(fmt.Errorf("mir: local id overflow: %w", err))
	}
	l.f.Locals = append(l.f.Locals, loc)
	return LocalID(raw)
}

// declareLocal allocates the local of a binding. A binding is declared once.
func (l *funcLowerer) declareLocal(binding hir.BindingID, name string, ty types.TypeID, kind LocalKind, mutable bool, span source.Span) LocalID {
	if existing, ok := l.locals[binding]; ok && binding.IsValid() {
		return existing
	}
	id := l.addLocal(Local{
		Name:    name,
		Type:    ty,
		Kind:    kind,
		Binding: binding,
		Mutable: mutable,
		Span:    span,
	})
	if binding.IsValid() {
		l.locals[binding] = id
	}
	return id
}

func (l *funcLowerer) localFor(binding hir.BindingID, span source.Span) (LocalID, error) {
	id, ok := l.locals[binding]
	if !ok {
		return NoLocalID, internalErr(ErrUnknownBinding, span, "binding #%d", binding)
	}
	return id, nil
}

func (l *funcLowerer) newTemp(ty types.TypeID, hint string, span source.Span) LocalID {
	name := fmt.Sprintf("tmp_%s%d", hint, l.nextTemp)
	l.nextTemp++
	return l.addLocal(Local{
		Name:    name,
		Type:    ty,
		Kind:    LocalTemp,
		Binding: hir.NoBinding,
		Span:    span,
	})
}

// unitTemp is a shared sink for values of type ().
func (l *funcLowerer) unitTemp() Place {
	if l.unitTmp == NoLocalID {
		l.unitTmp = l.addLocal(Local{
			Name: "tmp_unit",
			Type: l.unit(),
			Kind: LocalTemp,
		})
	}
	return LocalPlace(l.unitTmp)
}

func (l *funcLowerer) unit() types.TypeID {
	return l.in.Builtins().Unit
}

// useOf reads place by move when the type needs drop and by copy otherwise.
func (l *funcLowerer) useOf(place Place, ty types.TypeID) Operand {
	kind := OperandCopy
	if l.drops.NeedsDrop(ty) {
		kind = OperandMove
	}
	return Operand{Kind: kind, Type: ty, Place: place}
}

// buildDrop drops place right away when its type needs it.
func (l *funcLowerer) buildDrop(block BlockID, span source.Span, place Place, ty types.TypeID) (BlockID, error) {
	if !l.drops.NeedsDrop(ty) {
		return block, nil
	}
	if err := l.cfg.pushDrop(block, l.innermostScope(), span, place); err != nil {
		return NoBlockID, err
	}
	return block, nil
}
