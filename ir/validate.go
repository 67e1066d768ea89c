// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ir

import "fmt"

// ValidateFnBody checks the static invariants every loaded function body
// must satisfy:
//
//   - every Register(n) satisfies n < MaxRegisters
//   - every BlockIndex is in range
//   - a Phi at block 0 has no well-defined predecessor and is rejected
//     at load time (the interpreter does not special-case it)
//
// It does not check that every register is assigned exactly once
// (single-static-assignment uniqueness); that property is guaranteed by
// the assembler that produced the module and is not re-verified by the
// runtime.
func ValidateFnBody(body *FnBody) error {
	numBlocks := BlockIndex(len(body.Blocks))

	checkReg := func(r Register) error {
		if uint32(r) >= body.MaxRegisters {
			return fmt.Errorf("register %d out of range (max %d)", r, body.MaxRegisters)
		}
		return nil
	}
	checkBlock := func(b BlockIndex) error {
		if b >= numBlocks {
			return fmt.Errorf("block index %d out of range (have %d blocks)", b, numBlocks)
		}
		return nil
	}
	checkVal := func(v Val) error {
		if v.IsReg {
			return checkReg(v.Reg)
		}
		return nil
	}

	for bi, block := range body.Blocks {
		if err := checkBlock(block.NextBlock); err != nil {
			return fmt.Errorf("block %d: %w", bi, err)
		}
		for ii, instr := range block.Instrs {
			if bi == 0 && instr.Kind == IPhi {
				return fmt.Errorf("block 0 (entry) must not begin with a phi: instruction %d", ii)
			}
			if err := validateInstr(instr, checkReg, checkBlock, checkVal); err != nil {
				return fmt.Errorf("block %d instruction %d: %w", bi, ii, err)
			}
		}
	}
	return nil
}

func validateInstr(instr Instruction, checkReg func(Register) error, checkBlock func(BlockIndex) error, checkVal func(Val) error) error {
	switch instr.Kind {
	case IPhi:
		if err := checkReg(instr.PhiDest); err != nil {
			return err
		}
		for _, e := range instr.PhiEdges {
			if err := checkBlock(e.Pred); err != nil {
				return err
			}
			if err := checkVal(e.Value); err != nil {
				return err
			}
		}
	case IBr:
		if err := checkVal(instr.Cond); err != nil {
			return err
		}
		if err := checkBlock(instr.BrTrue); err != nil {
			return err
		}
		if err := checkBlock(instr.BrFals); err != nil {
			return err
		}
	case IBinaryOp:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		if err := checkVal(instr.Left); err != nil {
			return err
		}
		if err := checkVal(instr.Right); err != nil {
			return err
		}
	case IUnaryOp:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		if err := checkVal(instr.Left); err != nil {
			return err
		}
	case ILoadImm:
		return checkReg(instr.Dest)
	case ILoadRef:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		return checkReg(instr.Src)
	case IStoreRef:
		if err := checkReg(instr.Src); err != nil {
			return err
		}
		return checkVal(instr.Value)
	case IRefField, ILoadField, IStoreField:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		if err := checkReg(instr.Src); err != nil {
			return err
		}
		return checkVal(instr.Value)
	case IRefIndex, ILoadIndex, IStoreIndex:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		if err := checkReg(instr.Src); err != nil {
			return err
		}
		if err := checkVal(instr.Index); err != nil {
			return err
		}
		return checkVal(instr.Value)
	case ICall, ICallImpl:
		if err := checkReg(instr.ResultReg); err != nil {
			return err
		}
		for _, a := range instr.Args {
			if err := checkVal(a); err != nil {
				return err
			}
		}
	case IReturn:
		if instr.HasRetVal {
			return checkVal(instr.RetVal)
		}
	case IAlloc, IStackAlloc:
		return checkReg(instr.Dest)
	case IAllocArray, IStackAllocArray:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		return checkVal(instr.Count)
	case ICopyToStack, ICopyToHeap:
		if err := checkReg(instr.Dest); err != nil {
			return err
		}
		return checkReg(instr.Src)
	case IRefFunc:
		return checkReg(instr.Dest)
	case IUnwrapVariant:
		if err := checkReg(instr.MatchDest); err != nil {
			return err
		}
		if instr.HasInner {
			if err := checkReg(instr.InnerDest); err != nil {
				return err
			}
		}
		return checkVal(instr.TestVal)
	}
	return nil
}
