// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import "github.com/gvzbm/oxlr/ir"

// substituteType replaces every KindVar occurrence in t with its binding
// from env, recursively. Types with no free variables are returned
// unchanged (by value; ir.Type has no internal mutability).
func substituteType(t ir.Type, env map[ir.Symbol]ir.Type) ir.Type {
	switch t.Kind {
	case ir.KindVar:
		if bound, ok := env[t.VarName]; ok {
			return bound
		}
		return t
	case ir.KindArray:
		elem := substituteType(*t.Elem, env)
		return ir.Array(elem)
	case ir.KindRef:
		elem := substituteType(*t.Elem, env)
		return ir.Ref(elem)
	case ir.KindTuple:
		elems := make([]ir.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substituteType(e, env)
		}
		return ir.Tuple(elems...)
	case ir.KindUser:
		args := make([]ir.Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = substituteType(a, env)
		}
		return ir.User(t.UserPath, args)
	case ir.KindFnRef:
		sig := substituteSignature(*t.Signature, env)
		return ir.FnRef(sig)
	default:
		return t
	}
}

func substituteSignature(s ir.FunctionSignature, env map[ir.Symbol]ir.Type) ir.FunctionSignature {
	args := make([]ir.Field, len(s.Args))
	for i, a := range s.Args {
		args[i] = ir.Field{Name: a.Name, Type: substituteType(a.Type, env)}
	}
	return ir.FunctionSignature{Args: args, Return: substituteType(s.Return, env)}
}

// instantiate substitutes params/args into td's own structure, producing a
// concrete TypeDefinition with no remaining generic parameters.
func instantiate(td ir.TypeDefinition, params []ir.TypeParam, args []ir.Type) ir.TypeDefinition {
	if len(params) == 0 {
		return td
	}
	env := make(map[ir.Symbol]ir.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p.Name] = args[i]
		}
	}

	switch td.Kind {
	case ir.DefNewType:
		inner := substituteType(*td.Inner, env)
		return ir.NewTypeDef(inner)
	case ir.DefProduct:
		fields := make([]ir.Field, len(td.Fields))
		for i, f := range td.Fields {
			fields[i] = ir.Field{Name: f.Name, Type: substituteType(f.Type, env)}
		}
		return ir.ProductDef(nil, fields)
	case ir.DefSum:
		variants := make([]ir.Variant, len(td.Variants))
		for i, v := range td.Variants {
			variants[i] = ir.Variant{Name: v.Name, Def: instantiate(v.Def, params, args)}
		}
		return ir.SumDef(nil, variants)
	}
	return td
}

// TypeDefOf resolves a KindUser type to its TypeDefinition, whichever form
// it takes: an inline definition (a sum variant's anonymous payload type,
// see ir.Type.InlineDef) or a module-level declaration reached by path and
// instantiated against any type arguments.
func (w *World) TypeDefOf(ty ir.Type) (ir.TypeDefinition, error) {
	if ty.InlineDef != nil {
		return *ty.InlineDef, nil
	}
	return w.GetTypeInstantiated(ty.UserPath, ty.TypeArgs)
}

// GetTypeInstantiated resolves path to its base TypeDefinition and, if
// args is non-empty, substitutes args for the definition's declared type
// parameters, memoizing the result.
func (w *World) GetTypeInstantiated(path ir.Path, args []ir.Type) (ir.TypeDefinition, error) {
	base, err := w.GetType(path)
	if err != nil {
		return ir.TypeDefinition{}, err
	}
	if len(args) == 0 {
		return base, nil
	}
	if cached, ok := w.instCache.get(path, args); ok {
		return cached, nil
	}

	var params []ir.TypeParam
	switch base.Kind {
	case ir.DefSum:
		params = base.Parameters
	case ir.DefProduct:
		params = base.Parameters
	}

	inst := instantiate(base, params, args)
	w.instCache.put(path, args, inst)
	return inst, nil
}
