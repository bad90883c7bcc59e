package mir

import (
	"fmt"

	"fortio.org/safecast"

	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// cfg appends blocks and instructions to a function under construction.
// A block accepts instructions until it is terminated, and is terminated
// exactly once.
type cfg struct {
	f *Func
}

func (c *cfg) startNewBlock() BlockID {
	raw, err := safecast.Conv[int32](len(c.f.Blocks))
	if err != nil {
		panic(fmt.Errorf("mir: block id overflow: %w", err))
	}
	id := BlockID(raw)
	c.f.Blocks = append(c.f.Blocks, Block{ID: id, Term: Terminator{Kind: TermNone}})
	return id
}

func (c *cfg) block(id BlockID, span source.Span) (*Block, error) {
	b := c.f.Block(id)
	if b == nil {
		return nil, internalErr(ErrSealedBlock, span, "bb%d does not exist", id)
	}
	if b.Terminated() {
		return nil, internalErr(ErrSealedBlock, span, "bb%d is already terminated by %s", id, b.Term.Kind)
	}
	return b, nil
}

func (c *cfg) pushInstr(id BlockID, scope ScopeID, span source.Span, ins Instr) error {
	b, err := c.block(id, span)
	if err != nil {
		return err
	}
	ins.Scope = scope
	ins.Span = span
	b.Instrs = append(b.Instrs, ins)
	return nil
}

func (c *cfg) pushAssign(id BlockID, scope ScopeID, span source.Span, dst Place, src RValue) error {
	return c.pushInstr(id, scope, span, Instr{
		Kind:   InstrAssign,
		Assign: AssignInstr{Dst: dst, Src: src},
	})
}

func (c *cfg) pushAssignUnit(id BlockID, scope ScopeID, span source.Span, dst Place, unit types.TypeID) error {
	return c.pushAssign(id, scope, span, dst, RValue{Kind: RValueUse, Use: UnitOperand(unit)})
}

func (c *cfg) pushDrop(id BlockID, scope ScopeID, span source.Span, place Place) error {
	return c.pushInstr(id, scope, span, Instr{
		Kind: InstrDrop,
		Drop: DropInstr{Place: place},
	})
}

func (c *cfg) pushCall(id BlockID, scope ScopeID, span source.Span, dst Place, callee string, args []Operand) error {
	return c.pushInstr(id, scope, span, Instr{
		Kind: InstrCall,
		Call: CallInstr{Dst: dst, Callee: callee, Args: args},
	})
}

func (c *cfg) terminate(id BlockID, scope ScopeID, span source.Span, term Terminator) error {
	b, err := c.block(id, span)
	if err != nil {
		return err
	}
	term.Scope = scope
	term.Span = span
	b.Term = term
	return nil
}

func (c *cfg) gotoBlock(from BlockID, scope ScopeID, span source.Span, target BlockID) error {
	return c.terminate(from, scope, span, Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}})
}
