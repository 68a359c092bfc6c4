package gosource

import (
	"go/types"
	"strings"

	"github.com/conduit-lang/esgraph/internal/decl"
)

// typeRef converts a Go type. Pointers are dereferenced, slices and arrays
// are list containers, maps are map containers and instantiated generic types
// are list containers for one type argument and map containers for more.
func (a *Adapter) typeRef(t types.Type) decl.TypeRef {
	t = types.Unalias(t)

	switch t := t.(type) {
	case *types.Pointer:
		return a.typeRef(t.Elem())
	case *types.Slice:
		return decl.List(a.typeRef(t.Elem()))
	case *types.Array:
		return decl.List(a.typeRef(t.Elem()))
	case *types.Map:
		return decl.Map(a.typeRef(t.Key()), a.typeRef(t.Elem()))
	case *types.Basic:
		return decl.Std(t.Name())
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			// error and other universe types
			return decl.Std(obj.Name())
		}
		ref := decl.TypeRef{
			ID:       classID(obj.Pkg().Path(), obj.Name()),
			Standard: a.isStandard(obj.Pkg().Path()),
		}
		if targs := t.TypeArgs(); targs != nil && targs.Len() > 0 {
			ref.Container = decl.ListContainer
			if targs.Len() > 1 {
				ref.Container = decl.MapContainer
			}
			for i := 0; i < targs.Len(); i++ {
				ref.Args = append(ref.Args, a.typeRef(targs.At(i)))
			}
		}
		return ref
	default:
		// interfaces, anonymous structs, funcs, channels, type parameters
		return decl.TypeRef{Unsupported: true}
	}
}

// isStandard reports whether an import path belongs to the standard library:
// not one of the loaded packages and without a dot in its first element.
func (a *Adapter) isStandard(path string) bool {
	if a.local[path] {
		return false
	}
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
