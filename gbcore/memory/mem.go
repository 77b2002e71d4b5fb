package memory

import (
	"github.com/valerio/go-gbcore/gbcore/addr"
	"github.com/valerio/go-gbcore/gbcore/interrupt"
	"github.com/valerio/go-gbcore/gbcore/serial"
	"github.com/valerio/go-gbcore/gbcore/timer"
	"github.com/valerio/go-gbcore/gbcore/video"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Reset()
}

// MMU owns every peripheral and arbitrates all memory access. The CPU holds
// a single reference to it; peripherals advance only through Tick, at the
// T-cycle granularity the CPU charges them.
type MMU struct {
	cart *Cartridge
	wram WRAM
	hram HRAM

	interrupts interrupt.Controller
	timer      *timer.Timer
	ppu        *video.PPU
	serial     SerialPort

	tcycles   uint64
	regionMap [256]memRegion
}

// New creates a new memory unit with no cartridge loaded.
// Equivalent to turning on a Game Boy without a cartridge in.
func New() *MMU {
	return NewWithCartridge(NewCartridge())
}

// NewWithCartridge creates a new memory unit with the provided cartridge
// loaded, all peripherals in their post-boot state.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := &MMU{
		cart:  cart,
		timer: timer.New(),
	}
	m.timer.InterruptHandler = func() { m.interrupts.Request(interrupt.Timer) }
	m.serial = serial.NewLogSink(func() { m.interrupts.Request(interrupt.Serial) })
	m.ppu = video.New(m.interrupts.Request, m.Read)
	initRegionMap(m)
	return m
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// Tick advances the peripherals by the given number of T-cycles. The DMA
// engine moves one byte per M-cycle, so it only ticks every fourth T-cycle.
func (m *MMU) Tick(tcycles int) {
	for i := 0; i < tcycles; i++ {
		m.tcycles++
		m.timer.Tick()
		m.ppu.Tick()
		if m.tcycles%4 == 0 {
			m.ppu.TickDMA()
		}
	}
}

// RequestInterrupt sets the IF bit for the given source.
func (m *MMU) RequestInterrupt(kind interrupt.Kind) {
	m.interrupts.Request(kind)
}

// Interrupts exposes the interrupt controller to the CPU for dispatch.
func (m *MMU) Interrupts() *interrupt.Controller {
	return &m.interrupts
}

// PPU exposes the pixel processing unit.
func (m *MMU) PPU() *video.PPU {
	return m.ppu
}

// Timer exposes the timer, mostly for tests.
func (m *MMU) Timer() *timer.Timer {
	return m.timer
}

// Cartridge returns the loaded cartridge.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}

// Serial returns the attached serial device.
func (m *MMU) Serial() SerialPort {
	return m.serial
}

func (m *MMU) Read(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.cart.Read(address)
	case regionVRAM:
		return m.ppu.ReadVRAM(address)
	case regionWRAM:
		return m.wram.Read(address)
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.ppu.ReadOAM(address)
		}
		// unusable area 0xFEA0-0xFEFF
		return 0
	case regionIO:
		if address >= addr.HRAMStart && address <= addr.HRAMEnd {
			return m.hram.Read(address)
		}
		return m.readIO(address)
	default:
		// echo RAM and anything unmapped reads as 0 in this core
		return 0
	}
}

func (m *MMU) Write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.cart.Write(address, value)
	case regionVRAM:
		m.ppu.WriteVRAM(address, value)
	case regionWRAM:
		m.wram.Write(address, value)
	case regionOAM:
		if address <= addr.OAMEnd {
			m.ppu.WriteOAM(address, value)
		}
		// unusable area: dropped
	case regionIO:
		if address >= addr.HRAMStart && address <= addr.HRAMEnd {
			m.hram.Write(address, value)
			return
		}
		m.writeIO(address, value)
	default:
		// echo RAM and anything unmapped: dropped
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		// the upper 3 bits of IF do not exist and read as 1 on hardware
		return m.interrupts.Flag | 0xE0
	case address >= addr.LCDC && address <= addr.WX:
		return m.ppu.ReadRegister(address)
	case address == addr.IE:
		return m.interrupts.Enable
	default:
		return 0
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.interrupts.Flag = value & 0x1F
	case address >= addr.LCDC && address <= addr.WX:
		m.ppu.WriteRegister(address, value)
	case address == addr.IE:
		m.interrupts.Enable = value
	default:
		// unhandled I/O: dropped
	}
}
