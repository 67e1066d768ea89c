// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ir

import "fmt"

// Register identifies a plan-scoped SSA register.
type Register uint32

// BlockIndex identifies a BasicBlock within an FnBody's Blocks list.
type BlockIndex uint32

// Val is an abstract operand: a register reference or an immediate
// literal. Instructions are "converted" through value.Frame.Convert before
// use (see the value package).
type Val struct {
	IsReg bool
	Reg   Register

	// Literal forms, valid when !IsReg.
	LitKind LitKind
	Unit    bool // LitUnit carries no payload; field kept for symmetry
	Bool    bool
	Int     uint64
	IntW    int
	IntSign bool
	Float   float64
	FloatW  int
}

// LitKind discriminates the literal forms of Val when IsReg is false.
type LitKind int

const (
	LitUnit LitKind = iota
	LitBool
	LitInt
	LitFloat
)

func RegVal(r Register) Val { return Val{IsReg: true, Reg: r} }
func UnitVal() Val          { return Val{LitKind: LitUnit} }
func BoolVal(b bool) Val    { return Val{LitKind: LitBool, Bool: b} }
func IntVal(width int, signed bool, data uint64) Val {
	return Val{LitKind: LitInt, IntW: width, IntSign: signed, Int: data}
}
func FloatVal(width int, data float64) Val {
	return Val{LitKind: LitFloat, FloatW: width, Float: data}
}

// BinOp enumerates the binary operators available to BinaryOp.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Shl
	Shr
	LAnd
	LOr
	Eq
	NEq
	Less
	Greater
	LessEq
	GreaterEq
)

// UnOp enumerates the unary operators available to UnaryOp.
type UnOp int

const (
	LogNot UnOp = iota
	BitNot
	Neg
)

// Instruction is the sum type of all statements a BasicBlock may contain.
// Kind discriminates the case; only the fields relevant to Kind are set.
type InstrKind int

const (
	IPhi InstrKind = iota
	IBr
	IBinaryOp
	IUnaryOp
	ILoadImm
	ILoadRef
	IStoreRef
	IRefField
	ILoadField
	IStoreField
	IRefIndex
	ILoadIndex
	IStoreIndex
	ICall
	ICallImpl
	IReturn
	IAlloc
	IAllocArray
	IStackAlloc
	IStackAllocArray
	ICopyToStack
	ICopyToHeap
	IRefFunc
	IUnwrapVariant
)

// PhiEdge pairs a predecessor block with the value selected when control
// arrives from it.
type PhiEdge struct {
	Pred  BlockIndex
	Value Val
}

// Instruction is a single SSA statement.
type Instruction struct {
	Kind InstrKind

	// IPhi
	PhiDest  Register
	PhiEdges []PhiEdge

	// IBr
	Cond   Val
	BrTrue BlockIndex
	BrFals BlockIndex

	// IBinaryOp / IUnaryOp
	Op    BinOp
	UOp   UnOp
	Dest  Register
	Left  Val
	Right Val

	// ILoadImm
	Imm Val

	// ILoadRef / IStoreRef / IRefField / ILoadField / IStoreField /
	// IRefIndex / ILoadIndex / IStoreIndex / ICopyToStack / ICopyToHeap
	Src   Register
	Value Val
	Field Symbol
	Index Val

	// ICall / ICallImpl
	FnPath    Path
	Args      []Val
	ResultReg Register

	// IReturn
	RetVal    Val
	HasRetVal bool

	// IAlloc / IAllocArray / IStackAlloc / IStackAllocArray
	AllocType Type
	Count     Val

	// IRefFunc
	FuncPath Path

	// IUnwrapVariant
	MatchDest  Register
	InnerDest  Register
	HasInner   bool
	TestVal    Val
	VariantSym Symbol
}

func (i Instruction) String() string {
	return fmt.Sprintf("instr(kind=%d)", i.Kind)
}

// BasicBlock is an ordered list of instructions followed by a fallthrough
// target. If execution reaches the end without a taken branch or return,
// control transfers to NextBlock.
type BasicBlock struct {
	Instrs    []Instruction
	NextBlock BlockIndex
}

// FnBody is the compiled body of a function: a register budget and an
// ordered list of basic blocks, block 0 being the entry block.
type FnBody struct {
	MaxRegisters uint32
	Blocks       []BasicBlock
}

// StringConst is a module-level constant string. Neither Module nor any
// instruction references it; the instruction set does not reference strings
// directly (LoadImm covers Unit/Bool/Int/Float; strings are represented as
// Array(Int{8,...}) user values built at runtime).
type StringConst struct {
	Value string
}
