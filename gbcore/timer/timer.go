package timer

import "github.com/valerio/go-gbcore/gbcore/addr"

// Timer encapsulates the DIV/TIMA/TMA/TAC behavior.
//
// The divider is a 16 bit counter incremented every T-cycle; software only
// sees its upper byte at 0xFF04. TIMA advances whenever the divider crosses
// the period selected by TAC. Only the encoded values 0b100-0b111 produce an
// update, which makes the TAC enable bit implicit.
type Timer struct {
	ticks uint64 // total T-cycles, debug only

	div  uint16
	tima uint8
	tma  uint8
	tac  uint8

	// InterruptHandler is called when TIMA overflows, should be wired to
	// request the Timer interrupt.
	InterruptHandler func()
}

// New returns a timer with the post-boot divider seed.
func New() *Timer {
	return &Timer{div: 0xABCC}
}

// divMask returns the divider mask for the current TAC selection and whether
// the timer is running at all.
func (t *Timer) divMask() (uint16, bool) {
	switch t.tac & 0b111 {
	case 0b100:
		return 0x3FF, true // 4096 Hz
	case 0b101:
		return 0xF, true // 262144 Hz
	case 0b110:
		return 0x3F, true // 65536 Hz
	case 0b111:
		return 0xFF, true // 16384 Hz
	}
	return 0, false
}

// Tick advances the timer by one T-cycle.
func (t *Timer) Tick() {
	t.ticks++
	t.div++

	mask, enabled := t.divMask()
	if !enabled || t.div&mask != 0 {
		return
	}

	t.tima++
	if t.tima == 0 {
		t.tima = t.tma
		if t.InterruptHandler != nil {
			t.InterruptHandler()
		}
	}
}

// Ticks returns the total number of T-cycles seen so far.
func (t *Timer) Ticks() uint64 {
	return t.ticks
}

// Divider returns the raw 16 bit divider counter.
func (t *Timer) Divider() uint16 {
	return t.div
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return uint8(t.div >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		// Any write clears the whole divider, not just the visible byte.
		t.div = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
