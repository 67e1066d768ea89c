package ir

import "testing"

func fact5Body() *FnBody {
	// A loop-shaped body with no phi; only its register and block indices
	// matter to these tests:
	// block 0: falls through to block 1 (loop header)
	// block 1: br on r0 to block 2 (body) or block 3 (exit)
	// block 2: r1 = r1*r2; falls through to block 1
	// block 3: return r1
	return &FnBody{
		MaxRegisters: 4,
		Blocks: []BasicBlock{
			{Instrs: nil, NextBlock: 1},
			{
				Instrs: []Instruction{
					{Kind: IBr, Cond: RegVal(0), BrTrue: 2, BrFals: 3},
				},
				NextBlock: 2,
			},
			{
				Instrs: []Instruction{
					{Kind: IBinaryOp, Op: Mul, Dest: 1, Left: RegVal(1), Right: RegVal(2)},
				},
				NextBlock: 1,
			},
			{
				Instrs: []Instruction{
					{Kind: IReturn, HasRetVal: true, RetVal: RegVal(1)},
				},
				NextBlock: 3,
			},
		},
	}
}

func TestValidateFnBodyAccepts(t *testing.T) {
	if err := ValidateFnBody(fact5Body()); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}
}

func TestValidateFnBodyRejectsOutOfRangeRegister(t *testing.T) {
	body := fact5Body()
	body.Blocks[2].Instrs[0].Dest = 99
	if err := ValidateFnBody(body); err == nil {
		t.Fatal("expected error for out-of-range register")
	}
}

func TestValidateFnBodyRejectsOutOfRangeBlock(t *testing.T) {
	body := fact5Body()
	body.Blocks[1].Instrs[0].BrTrue = 99
	if err := ValidateFnBody(body); err == nil {
		t.Fatal("expected error for out-of-range block index")
	}
}

func TestValidateFnBodyRejectsPhiAtEntry(t *testing.T) {
	body := &FnBody{
		MaxRegisters: 1,
		Blocks: []BasicBlock{
			{Instrs: []Instruction{{Kind: IPhi, PhiDest: 0}}, NextBlock: 0},
		},
	}
	if err := ValidateFnBody(body); err == nil {
		t.Fatal("expected error for phi at entry block")
	}
}
