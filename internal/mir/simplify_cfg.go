package mir

import "fortio.org/safecast"

// SimplifyCFG performs control flow graph simplification on a function.
// Transformations:
// 1. Remove trivial goto blocks (0 instructions + goto terminator)
// 2. Collapse goto chains
// 3. Remove unreachable blocks
// 4. Renumber blocks deterministically
//
// Entry, ReturnBlock and scope entry blocks are remapped; a removed return
// block becomes NoBlockID.
func SimplifyCFG(f *Func) {
	if f == nil || len(f.Blocks) == 0 {
		return
	}

	redirects := buildRedirectMap(f)
	applyRedirects(f, redirects)
	reachable := Reachable(f)
	compactBlocks(f, reachable)
}

// buildRedirectMap finds all trivial goto blocks and builds a mapping
// from their IDs to their final targets (following chains).
func buildRedirectMap(f *Func) map[BlockID]BlockID {
	redirects := make(map[BlockID]BlockID)

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if !isTrivialGotoBlock(f, bb.ID) {
			continue
		}
		target := bb.Term.Goto.Target
		// A cycle of empty gotos is an infinite loop and must stay.
		visited := map[BlockID]bool{bb.ID: true}
		for !visited[target] {
			visited[target] = true
			if next, ok := redirects[target]; ok {
				target = next
				continue
			}
			if isTrivialGotoBlock(f, target) {
				target = f.Blocks[target].Term.Goto.Target
				continue
			}
			break
		}
		if target == bb.ID {
			continue
		}
		redirects[bb.ID] = target
	}
	return redirects
}

func isTrivialGotoBlock(f *Func, id BlockID) bool {
	bb := f.Block(id)
	return bb != nil && len(bb.Instrs) == 0 && bb.Term.Kind == TermGoto
}

// applyRedirects updates all terminators to use the redirected targets.
func applyRedirects(f *Func, redirects map[BlockID]BlockID) {
	if len(redirects) == 0 {
		return
	}
	redirect := func(id BlockID) BlockID {
		if newID, ok := redirects[id]; ok {
			return newID
		}
		return id
	}
	for i := range f.Blocks {
		remapTerm(&f.Blocks[i].Term, redirect)
	}
	f.Entry = redirect(f.Entry)
	for i := range f.Scopes {
		f.Scopes[i].Entry = redirect(f.Scopes[i].Entry)
	}
}

func remapTerm(term *Terminator, remap func(BlockID) BlockID) {
	switch term.Kind {
	case TermGoto:
		term.Goto.Target = remap(term.Goto.Target)
	case TermIf:
		term.If.Then = remap(term.If.Then)
		term.If.Else = remap(term.If.Else)
	}
}

// Reachable marks the blocks reachable from f.Entry.
func Reachable(f *Func) []bool {
	reachable := make([]bool, len(f.Blocks))
	stack := []BlockID{f.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id < 0 || int(id) >= len(f.Blocks) || reachable[id] {
			continue
		}
		reachable[id] = true
		stack = append(stack, f.Blocks[id].Term.Successors()...)
	}
	return reachable
}

// compactBlocks removes unreachable blocks and renumbers the remaining ones.
func compactBlocks(f *Func, reachable []bool) {
	oldToNew := make(map[BlockID]BlockID, len(f.Blocks))
	newBlocks := make([]Block, 0, len(f.Blocks))
	for i, keep := range reachable {
		if !keep {
			continue
		}
		raw, err := safecast.Conv[int32](len(newBlocks))
		if err != nil {
			panic(err)
		}
		oldToNew[f.Blocks[i].ID] = BlockID(raw)
		newBlocks = append(newBlocks, f.Blocks[i])
	}

	remap := func(id BlockID) BlockID {
		if newID, ok := oldToNew[id]; ok {
			return newID
		}
		return NoBlockID
	}
	for i := range newBlocks {
		newBlocks[i].ID = remap(newBlocks[i].ID)
		remapTerm(&newBlocks[i].Term, remap)
	}

	f.Blocks = newBlocks
	f.Entry = remap(f.Entry)
	f.ReturnBlock = remap(f.ReturnBlock)
	for i := range f.Scopes {
		f.Scopes[i].Entry = remap(f.Scopes[i].Entry)
	}
}
