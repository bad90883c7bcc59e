package mir

import "mirbuild/internal/source"

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
	TermUnreachable
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermReturn:
		return "return"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermUnreachable:
		return "unreachable"
	default:
		return "?"
	}
}

// Terminator ends a block. Return carries no value: the result has already
// been written to the return slot.
type Terminator struct {
	Kind  TermKind
	Scope ScopeID
	Span  source.Span

	Goto GotoTerm
	If   IfTerm
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

// Successors returns the blocks control may pass to.
func (t *Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermGoto:
		return []BlockID{t.Goto.Target}
	case TermIf:
		return []BlockID{t.If.Then, t.If.Else}
	default:
		return nil
	}
}
