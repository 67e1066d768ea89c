// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package machine

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/value"
)

// execResult reports the outcome of interpreting a single instruction: fall
// through to the next instruction in the block (the zero value), transfer
// control to another block, or return from the enclosing call.
type execResult struct {
	branch   bool
	target   ir.BlockIndex
	returned bool
	retVal   value.Value
}

func (m *Machine) exec(frame *value.Frame, instr ir.Instruction, prevBlock ir.BlockIndex) (execResult, error) {
	switch instr.Kind {
	case ir.IPhi:
		return execResult{}, m.execPhi(frame, instr, prevBlock)
	case ir.IBr:
		return m.execBr(frame, instr)
	case ir.IBinaryOp:
		return execResult{}, m.execBinaryOp(frame, instr)
	case ir.IUnaryOp:
		return execResult{}, m.execUnaryOp(frame, instr)
	case ir.ILoadImm:
		v, err := frame.Convert(instr.Imm)
		if err != nil {
			return execResult{}, err
		}
		return execResult{}, frame.Store(instr.Dest, v)
	case ir.ILoadRef:
		return execResult{}, m.execLoadRef(frame, instr)
	case ir.IStoreRef:
		return execResult{}, m.execStoreRef(frame, instr)
	case ir.IRefField:
		return execResult{}, m.execRefField(frame, instr)
	case ir.ILoadField:
		return execResult{}, m.execLoadField(frame, instr)
	case ir.IStoreField:
		return execResult{}, m.execStoreField(frame, instr)
	case ir.IRefIndex:
		return execResult{}, m.execRefIndex(frame, instr)
	case ir.ILoadIndex:
		return execResult{}, m.execLoadIndex(frame, instr)
	case ir.IStoreIndex:
		return execResult{}, m.execStoreIndex(frame, instr)
	case ir.ICall:
		return execResult{}, m.execCall(frame, instr)
	case ir.ICallImpl:
		return execResult{}, m.execCallImpl(frame, instr)
	case ir.IReturn:
		return m.execReturn(frame, instr)
	case ir.IAlloc:
		return execResult{}, m.execAlloc(frame, instr)
	case ir.IAllocArray:
		return execResult{}, m.execAllocArray(frame, instr)
	case ir.IStackAlloc:
		return execResult{}, m.execStackAlloc(frame, instr)
	case ir.IStackAllocArray:
		return execResult{}, m.execStackAllocArray(frame, instr)
	case ir.ICopyToStack:
		return execResult{}, m.execCopyToStack(frame, instr)
	case ir.ICopyToHeap:
		return execResult{}, m.execCopyToHeap(frame, instr)
	case ir.IRefFunc:
		return execResult{}, frame.Store(instr.Dest, value.Fn(instr.FuncPath))
	case ir.IUnwrapVariant:
		return execResult{}, m.execUnwrapVariant(frame, instr)
	default:
		return execResult{}, &ErrInstructionPreconditionViolated{Description: fmt.Sprintf("unknown instruction kind %d", instr.Kind)}
	}
}

func (m *Machine) execPhi(frame *value.Frame, instr ir.Instruction, prevBlock ir.BlockIndex) error {
	for _, edge := range instr.PhiEdges {
		if edge.Pred != prevBlock {
			continue
		}
		v, err := frame.Convert(edge.Value)
		if err != nil {
			return err
		}
		return frame.Store(instr.PhiDest, v)
	}
	return &ErrInstructionPreconditionViolated{
		Description: fmt.Sprintf("phi at register %d has no edge for predecessor block %d", instr.PhiDest, prevBlock),
	}
}

func (m *Machine) execBr(frame *value.Frame, instr ir.Instruction) (execResult, error) {
	cond, err := frame.Convert(instr.Cond)
	if err != nil {
		return execResult{}, err
	}
	if cond.Kind != value.KindBool {
		return execResult{}, &ErrInstructionPreconditionViolated{Description: "Br condition is not a Bool value"}
	}
	target := instr.BrFals
	if cond.Bool {
		target = instr.BrTrue
	}
	return execResult{branch: true, target: target}, nil
}

func (m *Machine) execReturn(frame *value.Frame, instr ir.Instruction) (execResult, error) {
	if !instr.HasRetVal {
		return execResult{returned: true, retVal: value.Nil()}, nil
	}
	v, err := frame.Convert(instr.RetVal)
	if err != nil {
		return execResult{}, err
	}
	return execResult{returned: true, retVal: v}, nil
}

func (m *Machine) execBinaryOp(frame *value.Frame, instr ir.Instruction) error {
	l, err := frame.Convert(instr.Left)
	if err != nil {
		return err
	}
	r, err := frame.Convert(instr.Right)
	if err != nil {
		return err
	}

	switch instr.Op {
	case ir.Eq:
		return frame.Store(instr.Dest, value.Bool(l.Equal(r)))
	case ir.NEq:
		return frame.Store(instr.Dest, value.Bool(!l.Equal(r)))
	}

	switch {
	case l.Kind == value.KindInt && r.Kind == value.KindInt:
		return m.execIntBinaryOp(frame, instr, l, r)
	case l.Kind == value.KindFloat && r.Kind == value.KindFloat:
		return m.execFloatBinaryOp(frame, instr, l, r)
	case l.Kind == value.KindBool && r.Kind == value.KindBool:
		return m.execBoolBinaryOp(frame, instr, l, r)
	default:
		return &ErrInstructionPreconditionViolated{
			Description: fmt.Sprintf("binary op %d requires matching numeric (or bool) operands, got %s and %s", instr.Op, l.TypeOf(), r.TypeOf()),
		}
	}
}

func (m *Machine) execIntBinaryOp(frame *value.Frame, instr ir.Instruction, l, r value.Value) error {
	if l.Int.Width != r.Int.Width || l.Int.Signed != r.Int.Signed {
		return &ErrInstructionPreconditionViolated{Description: "integer binary op operands differ in width or signedness"}
	}
	switch instr.Op {
	case ir.Add:
		return frame.Store(instr.Dest, value.Int(l.Int.Add(r.Int)))
	case ir.Sub:
		return frame.Store(instr.Dest, value.Int(l.Int.Sub(r.Int)))
	case ir.Mul:
		return frame.Store(instr.Dest, value.Int(l.Int.Mul(r.Int)))
	case ir.Div:
		if r.Int.Data == 0 {
			return &ErrInstructionPreconditionViolated{Description: "integer division by zero"}
		}
		return frame.Store(instr.Dest, value.Int(l.Int.Div(r.Int)))
	case ir.Shl:
		return frame.Store(instr.Dest, value.Int(l.Int.Shl(r.Int)))
	case ir.Shr:
		return frame.Store(instr.Dest, value.Int(l.Int.Shr(r.Int)))
	case ir.Less:
		return frame.Store(instr.Dest, value.Bool(l.Int.Compare(r.Int) < 0))
	case ir.Greater:
		return frame.Store(instr.Dest, value.Bool(l.Int.Compare(r.Int) > 0))
	case ir.LessEq:
		return frame.Store(instr.Dest, value.Bool(l.Int.Compare(r.Int) <= 0))
	case ir.GreaterEq:
		return frame.Store(instr.Dest, value.Bool(l.Int.Compare(r.Int) >= 0))
	default:
		return &ErrInstructionPreconditionViolated{Description: fmt.Sprintf("binary op %d is not valid for integer operands", instr.Op)}
	}
}

func (m *Machine) execFloatBinaryOp(frame *value.Frame, instr ir.Instruction, l, r value.Value) error {
	if l.Float.Width != r.Float.Width {
		return &ErrInstructionPreconditionViolated{Description: "float binary op operands differ in width"}
	}
	switch instr.Op {
	case ir.Add:
		return frame.Store(instr.Dest, value.Flt(l.Float.Add(r.Float)))
	case ir.Sub:
		return frame.Store(instr.Dest, value.Flt(l.Float.Sub(r.Float)))
	case ir.Mul:
		return frame.Store(instr.Dest, value.Flt(l.Float.Mul(r.Float)))
	case ir.Div:
		return frame.Store(instr.Dest, value.Flt(l.Float.Div(r.Float)))
	case ir.Less:
		return frame.Store(instr.Dest, value.Bool(l.Float.Compare(r.Float) < 0))
	case ir.Greater:
		return frame.Store(instr.Dest, value.Bool(l.Float.Compare(r.Float) > 0))
	case ir.LessEq:
		return frame.Store(instr.Dest, value.Bool(l.Float.Compare(r.Float) <= 0))
	case ir.GreaterEq:
		return frame.Store(instr.Dest, value.Bool(l.Float.Compare(r.Float) >= 0))
	default:
		return &ErrInstructionPreconditionViolated{Description: fmt.Sprintf("binary op %d is not valid for float operands", instr.Op)}
	}
}

func (m *Machine) execBoolBinaryOp(frame *value.Frame, instr ir.Instruction, l, r value.Value) error {
	switch instr.Op {
	case ir.LAnd:
		return frame.Store(instr.Dest, value.Bool(l.Bool && r.Bool))
	case ir.LOr:
		return frame.Store(instr.Dest, value.Bool(l.Bool || r.Bool))
	default:
		return &ErrInstructionPreconditionViolated{Description: fmt.Sprintf("binary op %d is not valid for bool operands", instr.Op)}
	}
}

func (m *Machine) execUnaryOp(frame *value.Frame, instr ir.Instruction) error {
	v, err := frame.Convert(instr.Left)
	if err != nil {
		return err
	}
	switch instr.UOp {
	case ir.LogNot:
		if v.Kind != value.KindBool {
			return &ErrInstructionPreconditionViolated{Description: "LogNot requires a Bool operand"}
		}
		return frame.Store(instr.Dest, value.Bool(!v.Bool))
	case ir.BitNot:
		if v.Kind != value.KindInt {
			return &ErrInstructionPreconditionViolated{Description: "BitNot requires an Int operand"}
		}
		return frame.Store(instr.Dest, value.Int(v.Int.BitwiseNegate()))
	case ir.Neg:
		switch v.Kind {
		case value.KindInt:
			if !v.Int.Signed {
				return &ErrInstructionPreconditionViolated{Description: "Neg requires a signed Int operand"}
			}
			return frame.Store(instr.Dest, value.Int(v.Int.Negate()))
		case value.KindFloat:
			return frame.Store(instr.Dest, value.Flt(v.Float.Neg()))
		default:
			return &ErrInstructionPreconditionViolated{Description: "Neg requires a signed Int or Float operand"}
		}
	default:
		return &ErrInstructionPreconditionViolated{Description: fmt.Sprintf("unknown unary op %d", instr.UOp)}
	}
}
