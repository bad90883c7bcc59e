package hir

import (
	"mirbuild/internal/source"
	"mirbuild/internal/types"
)

// Param represents a function parameter.
type Param struct {
	Name    string
	Binding BindingID
	Type    types.TypeID
	Span    source.Span
}

// Func represents an HIR function. Extent is the call-site extent that
// encloses the parameters and the body; return exits up to it.
type Func struct {
	ID     FuncID
	Name   string
	Span   source.Span
	Extent ExtentID
	Params []Param
	Result types.TypeID
	Body   *Block

	// Extents and Bindings are one past the largest id used in the function.
	Extents  uint32
	Bindings uint32
}

// Module is a decoded input file.
type Module struct {
	Name  string
	File  source.FileID
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
