// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package machine

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/value"
)

func (m *Machine) loadRefOperand(frame *value.Frame, r ir.Register) (value.Value, error) {
	v, err := frame.Load(r)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind != value.KindRef {
		return value.Value{}, &ErrInstructionPreconditionViolated{
			Description: fmt.Sprintf("register %d does not hold a Ref", r),
		}
	}
	return v, nil
}

func (m *Machine) execLoadRef(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.Load(v.Ref))
}

func (m *Machine) execStoreRef(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	newVal, err := frame.Convert(instr.Value)
	if err != nil {
		return err
	}
	return value.Store(v.Ref, newVal)
}

func (m *Machine) execRefField(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	fieldRef, err := v.Ref.Field(m.world, instr.Field)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(fieldRef))
}

func (m *Machine) execLoadField(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	fieldRef, err := v.Ref.Field(m.world, instr.Field)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.Load(fieldRef))
}

func (m *Machine) execStoreField(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	fieldRef, err := v.Ref.Field(m.world, instr.Field)
	if err != nil {
		return err
	}
	newVal, err := frame.Convert(instr.Value)
	if err != nil {
		return err
	}
	return value.Store(fieldRef, newVal)
}

// unsignedIndexOperand evaluates val and requires it to be an unsigned
// Int. Index operands (RefIndex/LoadIndex/StoreIndex) and array allocation
// counts (AllocArray/StackAllocArray) both go through this check.
func (m *Machine) unsignedIndexOperand(frame *value.Frame, val ir.Val) (int, error) {
	v, err := frame.Convert(val)
	if err != nil {
		return 0, err
	}
	if v.Kind != value.KindInt || v.Int.Signed {
		return 0, &ErrInvalidIndexType{Description: fmt.Sprintf("expected an unsigned int, got %s", v.TypeOf())}
	}
	return int(v.Int.Data), nil
}

func (m *Machine) execRefIndex(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	idx, err := m.unsignedIndexOperand(frame, instr.Index)
	if err != nil {
		return err
	}
	elemRef, err := v.Ref.Indexed(m.world, idx)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(elemRef))
}

func (m *Machine) execLoadIndex(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	idx, err := m.unsignedIndexOperand(frame, instr.Index)
	if err != nil {
		return err
	}
	elemRef, err := v.Ref.Indexed(m.world, idx)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.Load(elemRef))
}

func (m *Machine) execStoreIndex(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	idx, err := m.unsignedIndexOperand(frame, instr.Index)
	if err != nil {
		return err
	}
	elemRef, err := v.Ref.Indexed(m.world, idx)
	if err != nil {
		return err
	}
	newVal, err := frame.Convert(instr.Value)
	if err != nil {
		return err
	}
	return value.Store(elemRef, newVal)
}

func (m *Machine) evalArgs(frame *value.Frame, args []ir.Val) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := frame.Convert(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Machine) execCall(frame *value.Frame, instr ir.Instruction) error {
	entry, ok := m.world.GetFunction(instr.FnPath)
	if !ok {
		return &ErrFunctionNotFound{Path: instr.FnPath}
	}
	args, err := m.evalArgs(frame, instr.Args)
	if err != nil {
		return err
	}
	ret, err := m.Call(&entry.Body, args)
	if err != nil {
		return err
	}
	return frame.Store(instr.ResultReg, ret)
}

func (m *Machine) execCallImpl(frame *value.Frame, instr ir.Instruction) error {
	if len(instr.Args) == 0 {
		return &ErrInstructionPreconditionViolated{Description: "CallImpl requires at least one argument (the receiver)"}
	}
	args, err := m.evalArgs(frame, instr.Args)
	if err != nil {
		return err
	}
	self := args[0]

	fnPath, ok := m.world.FindImpl(instr.FnPath, self.TypeOf())
	if !ok {
		return &ErrImplementationNotFound{InterfaceFn: instr.FnPath, Concrete: self.TypeOf()}
	}
	entry, ok := m.world.GetFunction(fnPath)
	if !ok {
		return &ErrFunctionNotFound{Path: fnPath}
	}
	ret, err := m.Call(&entry.Body, args)
	if err != nil {
		return err
	}
	return frame.Store(instr.ResultReg, ret)
}

func (m *Machine) execAlloc(frame *value.Frame, instr ir.Instruction) error {
	r, err := m.heap.Alloc(instr.AllocType)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execAllocArray(frame *value.Frame, instr ir.Instruction) error {
	n, err := m.unsignedIndexOperand(frame, instr.Count)
	if err != nil {
		return err
	}
	r, err := m.heap.AllocArray(instr.AllocType, n)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execStackAlloc(frame *value.Frame, instr ir.Instruction) error {
	r, err := m.stack.StackAlloc(instr.AllocType)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execStackAllocArray(frame *value.Frame, instr ir.Instruction) error {
	n, err := m.unsignedIndexOperand(frame, instr.Count)
	if err != nil {
		return err
	}
	r, err := m.stack.StackAllocArray(instr.AllocType, n)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execCopyToStack(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	r, err := m.stack.CopyToStack(v.Ref)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execCopyToHeap(frame *value.Frame, instr ir.Instruction) error {
	v, err := m.loadRefOperand(frame, instr.Src)
	if err != nil {
		return err
	}
	r, err := m.heap.CopyToHeap(v.Ref)
	if err != nil {
		return err
	}
	return frame.Store(instr.Dest, value.RefVal(r))
}

func (m *Machine) execUnwrapVariant(frame *value.Frame, instr ir.Instruction) error {
	v, err := frame.Convert(instr.TestVal)
	if err != nil {
		return err
	}
	if v.Kind != value.KindRef || v.Ref.Type().Kind != ir.KindUser {
		return &ErrInstructionPreconditionViolated{Description: "UnwrapVariant requires a Ref to a User (sum) value"}
	}
	td, err := m.world.TypeDefOf(v.Ref.Type())
	if err != nil {
		return err
	}
	if td.Kind != ir.DefSum {
		return &ErrInstructionPreconditionViolated{Description: "UnwrapVariant requires a sum type"}
	}

	variantIndex := -1
	for i, variant := range td.Variants {
		if variant.Name == instr.VariantSym {
			variantIndex = i
			break
		}
	}
	if variantIndex < 0 {
		return &ErrInstructionPreconditionViolated{
			Description: fmt.Sprintf("sum type %s has no variant %s", v.Ref.Type(), instr.VariantSym),
		}
	}

	discriminant := v.Ref.ReadInt(8)
	matched := discriminant == uint64(variantIndex)
	if err := frame.Store(instr.MatchDest, value.Bool(matched)); err != nil {
		return err
	}
	if !matched || !instr.HasInner {
		return nil
	}

	variant := td.Variants[variantIndex]
	var innerType ir.Type
	if variant.Def.Kind == ir.DefNewType {
		innerType = *variant.Def.Inner
	} else {
		innerType = ir.Type{Kind: ir.KindUser, InlineDef: &variant.Def}
	}
	innerRef := v.Ref.Reinterpret(innerType, sumDiscriminantSize)
	return frame.Store(instr.InnerDest, value.RefVal(innerRef))
}

// sumDiscriminantSize is the number of bytes the discriminant byte occupies
// ahead of a sum value's active variant payload (see world.SizeOfUser's
// matching constant; kept separate since machine does not import world's
// unexported sizing internals).
const sumDiscriminantSize = 1
