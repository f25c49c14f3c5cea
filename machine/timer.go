package machine

import "math/rand"

// TimerTicks is the mean interval between timer interrupts.
const TimerTicks = 100

// Timer simulates a hardware interval timer. Each expiry re-arms the
// timer and invokes the handler, which typically calls
// Interrupt.YieldOnReturn to force the running thread to yield.
type Timer struct {
	interrupt *Interrupt
	handler   func()
	random    bool
	rng       *rand.Rand
}

// NewTimer arms a timer on the given interrupt controller. With random
// set, expiry intervals vary pseudo-randomly around TimerTicks using the
// seed, which exposes timing-dependent bugs while staying reproducible.
func NewTimer(it *Interrupt, handler func(), random bool, seed int64) *Timer {
	t := &Timer{
		interrupt: it,
		handler:   handler,
		random:    random,
	}
	if random {
		t.rng = rand.New(rand.NewSource(seed))
	}
	t.arm()
	return t
}

func (t *Timer) arm() {
	t.interrupt.Schedule(t.expire, t.interval(), TimerInt)
}

func (t *Timer) interval() int64 {
	if t.random {
		return 1 + t.rng.Int63n(TimerTicks*2)
	}
	return TimerTicks
}

// expire runs in interrupt context: re-arm first so the timer never
// stops, then let the handler decide whether to preempt.
func (t *Timer) expire() {
	t.arm()
	if t.handler != nil {
		t.handler()
	}
}
