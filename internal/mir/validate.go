package mir

import (
	"errors"
	"fmt"

	"mirbuild/internal/types"
)

// Validate checks MIR module invariants.
// Returns error if any invariant is violated.
func Validate(m *Module, typesIn *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := ValidateFunc(f, typesIn); err != nil {
			errs = append(errs, &FuncError{Func: f, Err: err})
		}
	}
	return errors.Join(errs...)
}

// FuncError ties the validation failures of one function to it.
type FuncError struct {
	Func *Func
	Err  error
}

func (e *FuncError) Error() string {
	return fmt.Sprintf("function %s: %v", e.Func.Name, e.Err)
}

func (e *FuncError) Unwrap() error { return e.Err }

// ValidateFunc checks one function: every block is terminated and only
// points at existing blocks, every local and scope reference resolves,
// dropped places need drop and exactly one block returns.
func ValidateFunc(f *Func, typesIn *types.Interner) error {
	if f == nil {
		return nil
	}
	return errors.Join(
		validateBlocksTerminated(f),
		validateBlockTargets(f),
		validateLocalIDs(f),
		validateScopes(f),
		validateTypes(f),
		validateReturn(f),
		validateDrop(f, typesIn),
	)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all block target IDs exist.
func validateBlockTargets(f *Func) error {
	var errs []error
	if f.Block(f.Entry) == nil {
		errs = append(errs, fmt.Errorf("entry bb%d does not exist", f.Entry))
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for _, target := range bb.Term.Successors() {
			if f.Block(target) == nil {
				errs = append(errs, fmt.Errorf("bb%d: %s target bb%d does not exist", i, bb.Term.Kind, target))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that all LocalID references are valid.
func validateLocalIDs(f *Func) error {
	var errs []error

	checkPlace := func(p Place, context string) {
		if p.Kind == PlaceLocal && f.Local(p.Local) == nil {
			errs = append(errs, fmt.Errorf("%s: local L%d does not exist", context, p.Local))
		}
		for _, proj := range p.Proj {
			if proj.Kind == PlaceProjIndex && f.Local(proj.IndexLocal) == nil {
				errs = append(errs, fmt.Errorf("%s: index local L%d does not exist", context, proj.IndexLocal))
			}
		}
	}
	checkOperand := func(op Operand, context string) {
		if op.Kind == OperandCopy || op.Kind == OperandMove {
			checkPlace(op.Place, context)
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			ctx := fmt.Sprintf("bb%d instr %d", i, j)
			switch ins.Kind {
			case InstrAssign:
				checkPlace(ins.Assign.Dst, ctx)
				for _, op := range rvalueOperands(&ins.Assign.Src) {
					checkOperand(op, ctx)
				}
				if ins.Assign.Src.Kind == RValueRef {
					checkPlace(ins.Assign.Src.Ref.Place, ctx)
				}
			case InstrCall:
				checkPlace(ins.Call.Dst, ctx)
				for _, arg := range ins.Call.Args {
					checkOperand(arg, ctx)
				}
			case InstrDrop:
				checkPlace(ins.Drop.Place, ctx)
			}
		}
		if bb.Term.Kind == TermIf {
			checkOperand(bb.Term.If.Cond, fmt.Sprintf("bb%d terminator", i))
		}
	}
	for _, p := range f.Params {
		if loc := f.Local(p); loc == nil || loc.Kind != LocalArg {
			errs = append(errs, fmt.Errorf("param L%d is not an argument local", p))
		}
	}
	return errors.Join(errs...)
}

func rvalueOperands(rv *RValue) []Operand {
	switch rv.Kind {
	case RValueUse:
		return []Operand{rv.Use}
	case RValueUnary:
		return []Operand{rv.Unary.Operand}
	case RValueBinary:
		return []Operand{rv.Binary.Left, rv.Binary.Right}
	case RValueTuple:
		return rv.Tuple.Elems
	default:
		return nil
	}
}

// validateScopes checks scope attribution and that the scope tree has a
// single root with parents declared before children.
func validateScopes(f *Func) error {
	var errs []error
	validScope := func(id ScopeID) bool {
		return id >= 0 && int(id) < len(f.Scopes)
	}
	for i, s := range f.Scopes {
		if i == 0 {
			if s.Parent != NoScopeID {
				errs = append(errs, fmt.Errorf("s0: root scope has parent s%d", s.Parent))
			}
			continue
		}
		if s.Parent < 0 || int(s.Parent) >= i {
			errs = append(errs, fmt.Errorf("s%d: parent s%d is not an earlier scope", i, s.Parent))
		}
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			if !validScope(bb.Instrs[j].Scope) {
				errs = append(errs, fmt.Errorf("bb%d instr %d: scope s%d does not exist", i, j, bb.Instrs[j].Scope))
			}
		}
		if bb.Term.Kind != TermNone && !validScope(bb.Term.Scope) {
			errs = append(errs, fmt.Errorf("bb%d terminator: scope s%d does not exist", i, bb.Term.Scope))
		}
	}
	return errors.Join(errs...)
}

func validateTypes(f *Func) error {
	var errs []error
	for i, loc := range f.Locals {
		if loc.Type == types.NoTypeID {
			errs = append(errs, fmt.Errorf("local L%d (%s): unknown type", i, loc.Name))
		}
	}
	if f.Result == types.NoTypeID {
		errs = append(errs, errors.New("unknown result type"))
	}
	return errors.Join(errs...)
}

// validateReturn checks that ReturnBlock is the only returning block.
func validateReturn(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.Term.Kind == TermReturn && bb.ID != f.ReturnBlock {
			errs = append(errs, fmt.Errorf("bb%d: returns but the return block is bb%d", i, f.ReturnBlock))
		}
	}
	if rb := f.Block(f.ReturnBlock); rb != nil && rb.Term.Kind != TermReturn {
		errs = append(errs, fmt.Errorf("return block bb%d ends in %s", f.ReturnBlock, rb.Term.Kind))
	}
	return errors.Join(errs...)
}

// validateDrop checks that only whole locals whose type needs drop, or
// projections of them, are dropped.
func validateDrop(f *Func, typesIn *types.Interner) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			if ins.Kind != InstrDrop {
				continue
			}
			place := ins.Drop.Place
			if place.Kind != PlaceLocal {
				errs = append(errs, fmt.Errorf("bb%d instr %d: drop of the return slot", i, j))
				continue
			}
			loc := f.Local(place.Local)
			if loc == nil {
				continue
			}
			if typesIn != nil && len(place.Proj) == 0 && !typesIn.NeedsDrop(loc.Type) {
				errs = append(errs, fmt.Errorf("bb%d instr %d: drop of L%d whose type %s needs no drop",
					i, j, place.Local, typesIn.Format(loc.Type)))
			}
		}
	}
	return errors.Join(errs...)
}
