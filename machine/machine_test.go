package machine

import "testing"

func TestRegisterBounds(t *testing.T) {
	m := NewMachine(NewInterrupt(nil))
	m.WriteRegister(0, 5)
	if got := m.ReadRegister(0); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range register")
		}
	}()
	m.ReadRegister(NumTotalRegs)
}

func TestRunStepsInstructions(t *testing.T) {
	st := NewStats()
	it := NewInterrupt(st)
	m := NewMachine(it)
	m.WriteRegister(PCReg, 0)
	m.WriteRegister(NextPCReg, 4)

	steps := 0
	m.SetStep(func(m *Machine) bool {
		steps++
		return steps < 10
	})
	m.Run()

	if steps != 10 {
		t.Fatalf("expected 10 steps, got %d", steps)
	}
	if st.NumInstructions != 9 {
		t.Fatalf("expected 9 completed instructions, got %d", st.NumInstructions)
	}
	if st.UserTicks != 9 {
		t.Fatalf("expected 9 user ticks, got %d", st.UserTicks)
	}
	// PC advanced once per completed instruction.
	if got := m.ReadRegister(PCReg); got != 9*4 {
		t.Fatalf("expected pc %d, got %d", 9*4, got)
	}
}

func TestRunStopsWhenHalted(t *testing.T) {
	it := NewInterrupt(nil)
	m := NewMachine(it)
	it.SetHaltHandler(func() {})

	steps := 0
	m.SetStep(func(m *Machine) bool {
		steps++
		if steps == 3 {
			it.Halt()
		}
		return true
	})
	m.Run()
	if steps != 3 {
		t.Fatalf("expected run loop to stop at halt, got %d steps", steps)
	}
}

func TestAddrSpaceCountsRestores(t *testing.T) {
	as := NewAddrSpace(8)
	if as.NumPages() != 8 {
		t.Fatalf("expected 8 pages, got %d", as.NumPages())
	}
	as.RestoreOnSwitch()
	as.RestoreOnSwitch()
	if as.Restores() != 2 {
		t.Fatalf("expected 2 restores, got %d", as.Restores())
	}
}
