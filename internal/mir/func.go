package mir

import (
	"mirbuild/internal/hir"
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

type Block struct {
	ID     BlockID
	Instrs []Instr
	Term   Terminator
}

func (b *Block) Terminated() bool {
	return b != nil && b.Term.Kind != TermNone
}

// ScopeInfo records one lexical scope of a lowered function. Parent is
// NoScopeID for the call-site scope; Entry is the block that was open when
// the scope was entered.
type ScopeInfo struct {
	Extent hir.ExtentID
	Parent ScopeID
	Entry  BlockID
	Span   source.Span
}

type Func struct {
	ID   FuncID
	Name string
	Span source.Span

	// Result types the return slot.
	Result types.TypeID

	Locals []Local
	Params []LocalID
	Blocks []Block
	Scopes []ScopeInfo

	Entry       BlockID
	ReturnBlock BlockID
}

// Block returns the block with the given id or nil.
func (f *Func) Block(id BlockID) *Block {
	if f == nil || id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// Local returns the local with the given id or nil.
func (f *Func) Local(id LocalID) *Local {
	if f == nil || id < 0 || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}

// Module is a lowered input file. Funcs are sorted by name.
type Module struct {
	Name  string
	Funcs []*Func
}

// Func looks a function up by name.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
