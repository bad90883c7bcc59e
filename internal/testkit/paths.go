package testkit

import (
	"fmt"

	"mirbuild/internal/mir"
)

// Chain follows the single-successor chain starting at from, collecting the
// rendered instructions of every block on the way. It stops at the first
// block whose terminator is not a goto, or at stop, and returns that block.
func Chain(f *mir.Func, from, stop mir.BlockID) (instrs []string, end mir.BlockID) {
	seen := make(map[mir.BlockID]bool)
	id := from
	for {
		bb := f.Block(id)
		if bb == nil || seen[id] {
			return instrs, id
		}
		seen[id] = true
		for i := range bb.Instrs {
			instrs = append(instrs, mir.FormatInstr(&bb.Instrs[i]))
		}
		if id == stop || bb.Term.Kind != mir.TermGoto {
			return instrs, id
		}
		id = bb.Term.Goto.Target
	}
}

// DropsAlong returns the drops on the goto chain from from to stop.
func DropsAlong(f *mir.Func, from, stop mir.BlockID) (drops []string, end mir.BlockID) {
	instrs, end := Chain(f, from, stop)
	for _, s := range instrs {
		if len(s) > 5 && s[:5] == "drop " {
			drops = append(drops, s[5:])
		}
	}
	return drops, end
}

// FindInstr returns the block and index of the first instruction that
// renders as text.
func FindInstr(f *mir.Func, text string) (mir.BlockID, int, bool) {
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			if mir.FormatInstr(&bb.Instrs[j]) == text {
				return bb.ID, j, true
			}
		}
	}
	return mir.NoBlockID, -1, false
}

// FindCall returns the block and index of the first call to callee.
func FindCall(f *mir.Func, callee string) (mir.BlockID, int, bool) {
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			if bb.Instrs[j].Kind == mir.InstrCall && bb.Instrs[j].Call.Callee == callee {
				return bb.ID, j, true
			}
		}
	}
	return mir.NoBlockID, -1, false
}

// Preds maps each block to the blocks that jump to it.
func Preds(f *mir.Func) map[mir.BlockID][]mir.BlockID {
	out := make(map[mir.BlockID][]mir.BlockID)
	for i := range f.Blocks {
		for _, s := range f.Blocks[i].Term.Successors() {
			out[s] = append(out[s], f.Blocks[i].ID)
		}
	}
	return out
}

// Instrs renders the instructions of one block.
func Instrs(f *mir.Func, id mir.BlockID) []string {
	bb := f.Block(id)
	if bb == nil {
		return nil
	}
	out := make([]string, len(bb.Instrs))
	for i := range bb.Instrs {
		out[i] = mir.FormatInstr(&bb.Instrs[i])
	}
	return out
}

// LocalNamed returns the id of the local called name.
func LocalNamed(f *mir.Func, name string) mir.LocalID {
	for i := range f.Locals {
		if f.Locals[i].Name == name {
			return mir.LocalID(i)
		}
	}
	panic(fmt.Sprintf("no local %q in fn %s", name, f.Name))
}

// CountReachableDrops counts how many times each place is dropped on
// reachable blocks.
func CountReachableDrops(f *mir.Func) map[string]int {
	reach := mir.Reachable(f)
	out := make(map[string]int)
	for i := range f.Blocks {
		if !reach[i] {
			continue
		}
		for j := range f.Blocks[i].Instrs {
			ins := &f.Blocks[i].Instrs[j]
			if ins.Kind == mir.InstrDrop {
				out[mir.FormatPlace(ins.Drop.Place)]++
			}
		}
	}
	return out
}
