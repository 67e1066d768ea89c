// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package machine implements the SSA interpreter: register frames,
// instruction dispatch, phi resolution by predecessor block, control flow
// between basic blocks, and function/interface call dispatch. It is the
// component that actually runs a loaded module's compiled functions,
// consulting world.World for types and dispatch targets and memory.Heap /
// memory.DataStack for allocation.
package machine

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/logging"
	"github.com/gvzbm/oxlr/memory"
	"github.com/gvzbm/oxlr/metrics"
	"github.com/gvzbm/oxlr/value"
	"github.com/gvzbm/oxlr/world"
)

// EntryFunctionName is the symbol Start appends to the module path to
// locate the entry function.
const EntryFunctionName = ir.Symbol("start")

// Options configures a Machine. The zero value is valid; every field falls
// back to a sane default.
type Options struct {
	// HeapSize is the byte ceiling passed to memory.NewHeap. Defaults to
	// memory.DefaultMaxHeapSize.
	HeapSize int
	// StackSize is the byte capacity passed to memory.NewDataStack.
	// Defaults to memory.DefaultDataStackSize.
	StackSize int
	Log       logging.Logger
	Metrics   *metrics.VM
}

// Machine is the SSA interpreter: one module universe, one heap, one data
// stack, executed from a single call stack. Execution is single-threaded
// and cooperative with no suspension points.
type Machine struct {
	world *world.World
	heap  *memory.Heap
	stack *memory.DataStack
	log   logging.Logger
	vm    *metrics.VM

	depth int
}

// New constructs a Machine over w, ready to run Start or Call.
func New(w *world.World, opts Options) *Machine {
	if opts.Log == nil {
		opts.Log = logging.NewNoOpLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOp()
	}
	if opts.HeapSize <= 0 {
		opts.HeapSize = memory.DefaultMaxHeapSize
	}
	if opts.StackSize <= 0 {
		opts.StackSize = memory.DefaultDataStackSize
	}
	return &Machine{
		world: w,
		heap:  memory.NewHeap(w, opts.HeapSize, opts.Log, opts.Metrics),
		stack: memory.NewDataStack(w, opts.StackSize),
		log:   opts.Log,
		vm:    opts.Metrics,
	}
}

// Heap returns the machine's heap, for hosts that want to inspect
// allocation state (tests, a future decision/allocation logger) without
// threading it through separately.
func (m *Machine) Heap() *memory.Heap { return m.heap }

// Stack returns the machine's data stack.
func (m *Machine) Stack() *memory.DataStack { return m.stack }

// Depth returns the current call stack depth (0 outside of any call).
func (m *Machine) Depth() int { return m.depth }

// Start runs modulePath::start with no arguments and returns the value
// start returned (or the error that aborted it).
func (m *Machine) Start(modulePath ir.Path) (value.Value, error) {
	entryPath := append(append(ir.Path{}, modulePath...), EntryFunctionName)
	entry, ok := m.world.GetFunction(entryPath)
	if !ok {
		return value.Value{}, &ErrFunctionNotFound{Path: entryPath}
	}
	return m.Call(&entry.Body, nil)
}

// Call pushes a fresh Frame and data-stack region sized to body, binds args
// to the first len(args) registers, and interprets basic blocks until a
// Return instruction yields a value or an instruction's precondition is
// violated. The data-stack region is released on every exit path, success
// or failure, so the data stack pointer is unchanged across a call.
func (m *Machine) Call(body *ir.FnBody, args []value.Value) (value.Value, error) {
	frame := value.NewFrame(int(body.MaxRegisters))
	for i, a := range args {
		if err := frame.Store(ir.Register(i), a); err != nil {
			return value.Value{}, err
		}
	}

	m.stack.PushFrame()
	defer m.stack.PopFrame()

	m.depth++
	m.vm.Calls.Inc()
	m.vm.CallDepth.Observe(float64(m.depth))
	defer func() { m.depth-- }()

	// prevBlock starts equal to block 0 itself; a phi at the entry block
	// is rejected at load time (ir.ValidateFnBody), so this initial value
	// is only ever consulted by a program that violates that invariant,
	// in which case the missing-edge error below fires.
	curBlock := ir.BlockIndex(0)
	prevBlock := ir.BlockIndex(0)

	for {
		if int(curBlock) >= len(body.Blocks) {
			return value.Value{}, &ErrInstructionPreconditionViolated{
				Description: fmt.Sprintf("block index %d out of range (%d blocks)", curBlock, len(body.Blocks)),
			}
		}
		block := body.Blocks[curBlock]

		branched := false
		for _, instr := range block.Instrs {
			m.vm.Instructions.Inc()
			res, err := m.exec(frame, instr, prevBlock)
			if err != nil {
				m.log.Debug("aborting call at block %d depth %d: %v", curBlock, m.depth, err)
				return value.Value{}, err
			}
			if res.returned {
				return res.retVal, nil
			}
			if res.branch {
				prevBlock = curBlock
				curBlock = res.target
				branched = true
				break
			}
		}
		if !branched {
			prevBlock = curBlock
			curBlock = block.NextBlock
		}
	}
}
