package mir

import "mirbuild/internal/source"

// InstrKind enumerates instruction kinds in MIR.
type InstrKind uint8

const (
	// InstrAssign represents an assignment instruction.
	InstrAssign InstrKind = iota
	// InstrCall represents a call instruction.
	InstrCall
	// InstrDrop represents a drop instruction.
	InstrDrop
)

func (k InstrKind) String() string {
	switch k {
	case InstrAssign:
		return "assign"
	case InstrCall:
		return "call"
	case InstrDrop:
		return "drop"
	default:
		return "?"
	}
}

// Instr represents a MIR instruction. Scope is the innermost lexical scope
// at the point it was emitted.
type Instr struct {
	Kind  InstrKind
	Scope ScopeID
	Span  source.Span

	Assign AssignInstr
	Call   CallInstr
	Drop   DropInstr
}

// AssignInstr represents an assignment instruction.
type AssignInstr struct {
	Dst Place
	Src RValue
}

// CallInstr calls a function by name and stores its result into Dst.
type CallInstr struct {
	Dst    Place
	Callee string
	Args   []Operand
}

// DropInstr runs the destructor of Place.
type DropInstr struct {
	Place Place
}
