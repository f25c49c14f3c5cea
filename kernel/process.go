package kernel

import (
	"github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"
	"github.com/TrellixVulnTeam/NachOS-PO5F/machine"
)

// addChild records a new child pid in the bounded child table.
func (t *Thread) addChild(pid int) {
	if t.childCount >= MaxChildren {
		t.sys.fatalf("thread %q child table full (%d children)", t.name, MaxChildren)
	}
	t.childPIDs[t.childCount] = pid
	t.childCount++
}

// ChildCount returns how many children the thread has created.
func (t *Thread) ChildCount() int {
	return t.childCount
}

// ChildSlot returns the child-table slot holding childPid, or -1.
func (t *Thread) ChildSlot(childPid int) int {
	for i := 0; i < t.childCount; i++ {
		if t.childPIDs[i] == childPid {
			return i
		}
	}
	return -1
}

// ChildPID returns the pid stored in a child-table slot.
func (t *Thread) ChildPID(slot int) int {
	if slot < 0 || slot >= t.childCount {
		t.sys.fatalf("thread %q has no child slot %d", t.name, slot)
	}
	return t.childPIDs[slot]
}

// SetChildExitCode records a child's exit code on this (parent) thread
// and readies the parent if it is blocked joining exactly that child.
// Runs in the exiting child's context; only a thread and its own children
// ever touch the table.
func (t *Thread) SetChildExitCode(childPid, code int) {
	slot := t.ChildSlot(childPid)
	if slot < 0 {
		t.sys.fatalf("thread %q has no child with pid %d", t.name, childPid)
	}
	debug.Printf('p', "recording exit code %d for pid %d (slot %d of %q)",
		code, childPid, slot, t.name)

	t.childExitCode[slot] = code
	t.childExited[slot] = true

	if t.joinSlot == slot {
		t.joinSlot = -1
		old := t.sys.interrupt.SetLevel(machine.IntOff)
		t.sys.scheduler.MoveToReady(t)
		t.sys.interrupt.SetLevel(old)
	}
}

// JoinWithChild blocks the calling thread until the child in the given
// slot has exited and returns its exit code. If the exit was already
// recorded, the stored code is returned without blocking; the slot is
// never cleared, so joining the same slot again returns the same code.
func (t *Thread) JoinWithChild(slot int) int {
	if t != t.sys.current {
		t.sys.fatalf("join on thread %q from a different thread", t.name)
	}
	if slot < 0 || slot >= t.childCount {
		t.sys.fatalf("thread %q joining nonexistent child slot %d", t.name, slot)
	}

	if !t.childExited[slot] {
		debug.Printf('p', "thread %q waiting for child slot %d (pid %d)",
			t.name, slot, t.childPIDs[slot])
		t.joinSlot = slot
		old := t.sys.interrupt.SetLevel(machine.IntOff)
		t.sys.Sleep()
		t.sys.interrupt.SetLevel(old)
	}
	return t.childExitCode[slot]
}

// Exit terminates the running thread with an exit code, propagating the
// code to the parent before finishing. It does not return.
func (sys *System) Exit(code int) {
	t := sys.current
	debug.Printf('p', "thread %q (pid %d) exiting with code %d", t.name, t.pid, code)
	if t.parent != nil {
		t.parent.SetChildExitCode(t.pid, code)
	}
	sys.Finish()
}

// SaveUserState snapshots the machine's register file into the thread.
// A snapshot is taken at most once per restore.
func (t *Thread) SaveUserState() {
	m := t.sys.mach
	if m == nil {
		return
	}
	if t.stateRestored {
		for i := 0; i < machine.NumTotalRegs; i++ {
			t.userRegisters[i] = m.ReadRegister(i)
		}
		t.stateRestored = false
	}
}

// RestoreUserState reinstalls the thread's register snapshot into the
// machine.
func (t *Thread) RestoreUserState() {
	m := t.sys.mach
	if m == nil {
		return
	}
	for i := 0; i < machine.NumTotalRegs; i++ {
		m.WriteRegister(i, t.userRegisters[i])
	}
	t.stateRestored = true
}
