// Package hir is the structured input of the lowering phase.
//
// Every expression carries its TypeID and source span. Lexical regions are
// identified by ExtentIDs: each block, each statement, the remainder of a
// block after a let, the initializer of a let, each loop and the function
// call site get their own extent. Variable references are already resolved
// to BindingIDs.
//
// The tree is usually produced by Decode from its JSON form; tests build it
// directly.
package hir

// ExtentID identifies a lexical region within a function.
type ExtentID uint32

// BindingID identifies a declared variable or parameter within a function.
type BindingID uint32

// FuncID identifies a function within a module.
type FuncID uint32

const (
	NoExtent  ExtentID  = 0
	NoBinding BindingID = 0
)

func (id ExtentID) IsValid() bool  { return id != NoExtent }
func (id BindingID) IsValid() bool { return id != NoBinding }
