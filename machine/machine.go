package machine

import (
	"fmt"

	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
)

// NumTotalRegs is the size of the user-visible register file.
const NumTotalRegs = 40

// Register numbers with fixed roles. The rest are general purpose.
const (
	StackReg   = 29 // user stack pointer
	RetAddrReg = 31
	PCReg      = 34
	NextPCReg  = 35
	PrevPCReg  = 36
)

// StepFunc executes one simulated user instruction. Returning false stops
// the run loop (the simulated program trapped back into the kernel).
type StepFunc func(m *Machine) bool

// Machine is the user-mode CPU: a register file plus a pluggable
// instruction step. The kernel snapshots and restores the register file
// around every context switch involving a user-level thread.
type Machine struct {
	registers [NumTotalRegs]int32
	interrupt *Interrupt
	stats     *Stats
	step      StepFunc
}

// NewMachine creates a machine wired to the interrupt controller.
func NewMachine(it *Interrupt) *Machine {
	return &Machine{interrupt: it, stats: it.Stats()}
}

// ReadRegister returns the value of register n.
func (m *Machine) ReadRegister(n int) int32 {
	if n < 0 || n >= NumTotalRegs {
		panic(fmt.Sprintf("machine: read of register %d", n))
	}
	return m.registers[n]
}

// WriteRegister sets register n.
func (m *Machine) WriteRegister(n int, v int32) {
	if n < 0 || n >= NumTotalRegs {
		panic(fmt.Sprintf("machine: write of register %d", n))
	}
	m.registers[n] = v
}

// SetStep installs the instruction interpreter.
func (m *Machine) SetStep(fn StepFunc) {
	m.step = fn
}

// Run executes user instructions until the step function traps or the
// machine halts. Each instruction advances the program counters, is
// counted, and charges one user tick, which is when timer preemption can
// strike.
func (m *Machine) Run() {
	debug.Printf('m', "starting user execution at pc %d", m.registers[PCReg])
	for m.step != nil && !m.interrupt.Halted() {
		if !m.step(m) {
			return
		}
		m.stats.NumInstructions++
		m.registers[PrevPCReg] = m.registers[PCReg]
		m.registers[PCReg] = m.registers[NextPCReg]
		m.registers[NextPCReg] += 4
		m.interrupt.OneTick(UserTick, true)
	}
}
