package memory

import "github.com/valerio/go-gbcore/gbcore/addr"

// WRAM is the flat 8 KiB work RAM block at 0xC000-0xDFFF.
type WRAM struct {
	data [0x2000]uint8
}

func (w *WRAM) Read(address uint16) uint8 {
	return w.data[address-addr.WRAMStart]
}

func (w *WRAM) Write(address uint16, value uint8) {
	w.data[address-addr.WRAMStart] = value
}

// HRAM is the 127 byte high RAM block at 0xFF80-0xFFFE.
type HRAM struct {
	data [0x7F]uint8
}

func (h *HRAM) Read(address uint16) uint8 {
	return h.data[address-addr.HRAMStart]
}

func (h *HRAM) Write(address uint16, value uint8) {
	h.data[address-addr.HRAMStart] = value
}
