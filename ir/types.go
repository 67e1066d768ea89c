package ir

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the cases of Type.
type TypeKind int

const (
	KindUnit TypeKind = iota
	KindBool
	KindInt
	KindFloat
	KindArray
	KindTuple
	KindUser
	KindRef
	KindAbstractRef
	KindFnRef
	KindVar
)

func (k TypeKind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindUser:
		return "User"
	case KindRef:
		return "Ref"
	case KindAbstractRef:
		return "AbstractRef"
	case KindFnRef:
		return "FnRef"
	case KindVar:
		return "Var"
	default:
		return "Unknown"
	}
}

// Type is a tagged variant describing the shape of a value. Only the
// fields relevant to Kind are meaningful; the zero value of the others is
// ignored. Type is comparable structurally but is NOT a valid Go map key
// (Array/Tuple/AbstractRef hold slices) — use util.HashMap with Type.Equal
// and Type.HashKey for map-like lookups (see World.impls in the world
// package).
type Type struct {
	Kind TypeKind

	// KindInt
	Signed bool
	Width  int // 8|16|32|64 for Int/Float

	// KindArray / KindRef: element/inner type
	Elem *Type

	// KindTuple
	Elems []Type

	// KindUser
	UserPath Path
	TypeArgs []Type // nil means no type arguments supplied

	// KindUser, alternative to UserPath: set when this User type addresses
	// an anonymous definition rather than a module-level declaration, i.e.
	// a sum variant's payload (TypeDefinition.Variants holds a
	// (Symbol, TypeDefinition) pair, not a path). InlineDef and UserPath
	// are mutually exclusive; the machine package's UnwrapVariant
	// instruction is the only producer of InlineDef types.
	InlineDef *TypeDefinition

	// KindAbstractRef
	Interfaces []Path

	// KindFnRef
	Signature *FunctionSignature

	// KindVar
	VarName Symbol
}

// Convenience constructors.

func Unit() Type { return Type{Kind: KindUnit} }
func Bool() Type { return Type{Kind: KindBool} }
func Int(width int, signed bool) Type {
	return Type{Kind: KindInt, Width: width, Signed: signed}
}
func Float(width int) Type { return Type{Kind: KindFloat, Width: width} }
func Array(elem Type) Type { return Type{Kind: KindArray, Elem: &elem} }
func Tuple(elems ...Type) Type {
	return Type{Kind: KindTuple, Elems: elems}
}
func User(path Path, args []Type) Type {
	return Type{Kind: KindUser, UserPath: path, TypeArgs: args}
}
func Ref(inner Type) Type { return Type{Kind: KindRef, Elem: &inner} }
func AbstractRef(ifaces []Path) Type {
	return Type{Kind: KindAbstractRef, Interfaces: ifaces}
}
func FnRef(sig FunctionSignature) Type {
	return Type{Kind: KindFnRef, Signature: &sig}
}
func Var(name Symbol) Type { return Type{Kind: KindVar, VarName: name} }

// Equal reports structural equality between two types.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindUnit, KindBool:
		return true
	case KindInt:
		return t.Width == o.Width && t.Signed == o.Signed
	case KindFloat:
		return t.Width == o.Width
	case KindArray:
		return t.Elem.Equal(*o.Elem)
	case KindTuple:
		if len(t.Elems) != len(o.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	case KindUser:
		if t.InlineDef != nil || o.InlineDef != nil {
			return t.InlineDef == o.InlineDef
		}
		if !t.UserPath.Equal(o.UserPath) {
			return false
		}
		if len(t.TypeArgs) != len(o.TypeArgs) {
			return false
		}
		for i := range t.TypeArgs {
			if !t.TypeArgs[i].Equal(o.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KindRef:
		return t.Elem.Equal(*o.Elem)
	case KindAbstractRef:
		if len(t.Interfaces) != len(o.Interfaces) {
			return false
		}
		for i := range t.Interfaces {
			if !t.Interfaces[i].Equal(o.Interfaces[i]) {
				return false
			}
		}
		return true
	case KindFnRef:
		return t.Signature.Equal(*o.Signature)
	case KindVar:
		return t.VarName == o.VarName
	}
	return false
}

// HashKey renders a canonical string usable as a hash bucket key for Type
// values inside util.HashMap (see world's implementation table and the
// generic instantiation cache). It is not meant to be human-facing.
func (t Type) HashKey() string {
	var b strings.Builder
	t.writeHashKey(&b)
	return b.String()
}

func (t Type) writeHashKey(b *strings.Builder) {
	fmt.Fprintf(b, "%d(", t.Kind)
	switch t.Kind {
	case KindInt:
		fmt.Fprintf(b, "%d,%t", t.Width, t.Signed)
	case KindFloat:
		fmt.Fprintf(b, "%d", t.Width)
	case KindArray:
		t.Elem.writeHashKey(b)
	case KindTuple:
		for _, e := range t.Elems {
			e.writeHashKey(b)
			b.WriteByte(';')
		}
	case KindUser:
		if t.InlineDef != nil {
			fmt.Fprintf(b, "inline:%p", t.InlineDef)
			break
		}
		b.WriteString(t.UserPath.String())
		b.WriteByte('<')
		for _, a := range t.TypeArgs {
			a.writeHashKey(b)
			b.WriteByte(',')
		}
		b.WriteByte('>')
	case KindRef:
		t.Elem.writeHashKey(b)
	case KindAbstractRef:
		for _, p := range t.Interfaces {
			b.WriteString(p.String())
			b.WriteByte(';')
		}
	case KindFnRef:
		b.WriteString(t.Signature.String())
	case KindVar:
		b.WriteString(string(t.VarName))
	}
	b.WriteByte(')')
}

func (t Type) String() string {
	switch t.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		if t.Signed {
			return fmt.Sprintf("i%d", t.Width)
		}
		return fmt.Sprintf("u%d", t.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case KindArray:
		return fmt.Sprintf("[%s]", t.Elem)
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case KindUser:
		if t.InlineDef != nil {
			return fmt.Sprintf("<variant payload %s>", t.InlineDef)
		}
		if len(t.TypeArgs) == 0 {
			return t.UserPath.String()
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.UserPath, strings.Join(parts, ", "))
	case KindRef:
		return fmt.Sprintf("&%s", t.Elem)
	case KindAbstractRef:
		parts := make([]string, len(t.Interfaces))
		for i, p := range t.Interfaces {
			parts[i] = p.String()
		}
		return fmt.Sprintf("dyn %s", strings.Join(parts, " + "))
	case KindFnRef:
		return fmt.Sprintf("fn%s", t.Signature)
	case KindVar:
		return fmt.Sprintf("'%s", t.VarName)
	}
	return "?"
}
