package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	String  TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
}

// Interner hands out stable TypeIDs for structural descriptors.
// It is not safe for concurrent mutation; once the input is decoded it is
// only read, and concurrent reads are fine.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	tuples   [][]TypeID
	tupleIdx map[string]uint32
	structs  []StructInfo
	byName   map[string]TypeID
}

type typeKey Type

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 32),
		tupleIdx: make(map[string]uint32),
		byName:   make(map[string]TypeID),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Uint = in.Intern(Type{Kind: KindUint})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern returns the TypeID for t, allocating one on first sight.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Tuple interns the tuple of elems. The empty tuple is unit.
func (in *Interner) Tuple(elems ...TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	var key strings.Builder
	for _, e := range elems {
		fmt.Fprintf(&key, "%d,", e)
	}
	idx, ok := in.tupleIdx[key.String()]
	if !ok {
		n, err := safecast.Conv[uint32](len(in.tuples))
		if err != nil {
			panic(fmt.Errorf("len(tuples) overflow: %w", err))
		}
		idx = n
		in.tuples = append(in.tuples, append([]TypeID(nil), elems...))
		in.tupleIdx[key.String()] = idx
	}
	return in.Intern(Type{Kind: KindTuple, Payload: idx})
}

// TupleElems returns the element types of a tuple, or nil.
func (in *Interner) TupleElems(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil
	}
	return in.tuples[tt.Payload]
}

// DeclareStruct registers a nominal struct by name. Fields may be filled in
// later with SetStructFields so structs can refer to each other.
func (in *Interner) DeclareStruct(name string, drop bool) (TypeID, error) {
	if _, ok := in.byName[name]; ok {
		return NoTypeID, fmt.Errorf("types: struct %q declared twice", name)
	}
	n, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, StructInfo{Name: name, Drop: drop})
	id := in.internRaw(Type{Kind: KindStruct, Payload: n})
	in.byName[name] = id
	return id, nil
}

// SetStructFields replaces the field list of a declared struct.
func (in *Interner) SetStructFields(id TypeID, fields []Field) {
	tt := in.MustLookup(id)
	if tt.Kind != KindStruct {
		panic("types: SetStructFields on non-struct")
	}
	in.structs[tt.Payload].Fields = fields
}

// StructInfo returns the struct description for id, or nil.
func (in *Interner) StructInfo(id TypeID) *StructInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	return &in.structs[tt.Payload]
}

// Named resolves a struct name.
func (in *Interner) Named(name string) (TypeID, bool) {
	id, ok := in.byName[name]
	return id, ok
}

// IsUnit reports whether id is the unit type.
func (in *Interner) IsUnit(id TypeID) bool {
	return id == in.builtins.Unit
}
