package types

// NeedsDrop reports whether values of id own resources that must be released
// when they go out of scope. Strings and own T always do; structs do when
// they declare a destructor or hold a field that needs drop; arrays and
// tuples follow their elements. References and scalars never do.
func (in *Interner) NeedsDrop(id TypeID) bool {
	return in.needsDrop(id, nil)
}

func (in *Interner) needsDrop(id TypeID, seen map[TypeID]struct{}) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindString, KindOwn:
		return true
	case KindArray:
		return tt.Count > 0 && in.needsDrop(tt.Elem, seen)
	case KindTuple:
		for _, e := range in.tuples[tt.Payload] {
			if in.needsDrop(e, seen) {
				return true
			}
		}
		return false
	case KindStruct:
		info := &in.structs[tt.Payload]
		if info.Drop {
			return true
		}
		if _, ok := seen[id]; ok {
			// recursive by-value struct; the cycle itself adds nothing
			return false
		}
		if seen == nil {
			seen = make(map[TypeID]struct{})
		}
		seen[id] = struct{}{}
		for _, f := range info.Fields {
			if in.needsDrop(f.Type, seen) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
