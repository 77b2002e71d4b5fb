package video

import (
	"github.com/valerio/go-gbcore/gbcore/addr"
	"github.com/valerio/go-gbcore/gbcore/bit"
	"github.com/valerio/go-gbcore/gbcore/interrupt"
)

// Mode represents the PPU's current rendering stage.
// These values match the STAT register bits 1-0.
type Mode uint8

const (
	// HBlankMode (mode 0): horizontal blank at the end of a visible line.
	HBlankMode Mode = 0
	// VBlankMode (mode 1): vertical blank, lines 144-153.
	VBlankMode Mode = 1
	// OAMScanMode (mode 2): the PPU is scanning OAM for sprites.
	OAMScanMode Mode = 2
	// DrawingMode (mode 3): the PPU is pushing pixels out.
	DrawingMode Mode = 3
)

const (
	oamScanTicks  = 80
	drawingTicks  = 172 // fixed in this core, real hardware varies with sprites
	ticksPerLine  = 456
	visibleLines  = 144
	linesPerFrame = 154
)

// LCD Status register bit indexes.
// Bit 6 - interrupt on LYC == LY
// Bit 5 - interrupt on mode 2 (OAM scan)
// Bit 4 - interrupt on mode 1 (VBlank)
// Bit 3 - interrupt on mode 0 (HBlank)
// Bit 2 - LYC == LY comparison result
// Bits 1,0 - current mode
const (
	statLycIrq    = 6
	statOamIrq    = 5
	statVblankIrq = 4
	statHblankIrq = 3
	statLycEquals = 2
)

// PPU owns VRAM, OAM, the LCD register file and the DMA engine, and walks
// the mode state machine one T-cycle at a time.
type PPU struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8

	control uint8 // LCDC
	status  uint8 // STAT
	scrollY uint8
	scrollX uint8
	ly      uint8
	lyc     uint8
	bgp     uint8
	obp     [2]uint8
	windowY uint8
	windowX uint8

	// palette lookup tables rebuilt on BGP/OBP writes
	bgColors  [4]GBColor
	sp0Colors [4]GBColor
	sp1Colors [4]GBColor

	framebuffer  *FrameBuffer
	currentFrame uint64
	lineTicks    int
	tcycles      uint64

	dma DMA

	// irq is how the PPU raises VBlank/LCDStat requests; wired by the bus.
	irq func(interrupt.Kind)
	// dmaRead resolves DMA source reads through the bus; wired by the bus.
	dmaRead func(uint16) uint8

	debugTiles *TileDecoder
}

// New creates a PPU in the post-boot state: mode 2 at line 0 with the LCD on.
func New(irq func(interrupt.Kind), dmaRead func(uint16) uint8) *PPU {
	p := &PPU{
		control:     0x91,
		status:      uint8(OAMScanMode),
		bgp:         0xFC,
		obp:         [2]uint8{0xFF, 0xFF},
		framebuffer: NewFrameBuffer(),
		irq:         irq,
		dmaRead:     dmaRead,
		debugTiles:  NewTileDecoder(),
	}

	p.bgColors = buildPalette(p.bgp)
	p.sp0Colors = buildPalette(p.obp[0] & 0xFC)
	p.sp1Colors = buildPalette(p.obp[1] & 0xFC)
	p.framebuffer.Clear()

	return p
}

// Tick advances the PPU by one T-cycle.
func (p *PPU) Tick() {
	p.tcycles++
	p.lineTicks++

	switch p.mode() {
	case OAMScanMode:
		if p.lineTicks >= oamScanTicks {
			p.setMode(DrawingMode)
		}
	case DrawingMode:
		if p.lineTicks >= oamScanTicks+drawingTicks {
			p.setMode(HBlankMode)
			if bit.IsSet(statHblankIrq, p.status) {
				p.irq(interrupt.LCDStat)
			}
		}
	case HBlankMode:
		if p.lineTicks >= ticksPerLine {
			p.incrementLY()
			if int(p.ly) >= visibleLines {
				p.setMode(VBlankMode)
				p.irq(interrupt.VBlank)
				if bit.IsSet(statVblankIrq, p.status) {
					p.irq(interrupt.LCDStat)
				}
				p.currentFrame++
			} else {
				p.enterOAMScan()
			}
			p.lineTicks = 0
		}
	case VBlankMode:
		if p.lineTicks >= ticksPerLine {
			p.incrementLY()
			if int(p.ly) >= linesPerFrame {
				p.ly = 0
				p.compareLYC()
				p.enterOAMScan()
			}
			p.lineTicks = 0
		}
	}
}

// TickDMA advances the DMA engine by one M-cycle, copying a byte into OAM
// when one is due. The copy bypasses the OAM access block that applies to
// the CPU.
func (p *PPU) TickDMA() {
	if from, to, ok := p.dma.Tick(); ok {
		p.oam[to] = p.dmaRead(from)
	}
}

// CurrentFrame returns the number of completed frames. Hosts watch this to
// know when to present.
func (p *PPU) CurrentFrame() uint64 {
	return p.currentFrame
}

// Framebuffer returns the current frame's pixels.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// DMAActive reports whether an OAM copy is in progress.
func (p *PPU) DMAActive() bool {
	return p.dma.Active()
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}

func (p *PPU) mode() Mode {
	return Mode(p.status & 0b11)
}

func (p *PPU) setMode(mode Mode) {
	p.status = p.status&^0b11 | uint8(mode)
}

func (p *PPU) enterOAMScan() {
	p.setMode(OAMScanMode)
	if bit.IsSet(statOamIrq, p.status) {
		p.irq(interrupt.LCDStat)
	}
}

// incrementLY bumps the scanline and re-evaluates the LYC comparison,
// requesting LCDStat when the comparison turns true and its source is
// enabled.
func (p *PPU) incrementLY() {
	p.ly++
	p.compareLYC()
}

func (p *PPU) compareLYC() {
	if p.ly == p.lyc {
		p.status = bit.Set(statLycEquals, p.status)
		if bit.IsSet(statLycIrq, p.status) {
			p.irq(interrupt.LCDStat)
		}
	} else {
		p.status = bit.Reset(statLycEquals, p.status)
	}
}

// ReadVRAM returns the byte at the given bus address (0x8000-0x9FFF).
// This core does not gate VRAM during mode 3.
func (p *PPU) ReadVRAM(address uint16) uint8 {
	return p.vram[address-addr.VRAMStart]
}

func (p *PPU) WriteVRAM(address uint16, value uint8) {
	offset := address - addr.VRAMStart
	p.vram[offset] = value
	p.debugTiles.Update(p.vram[:], offset)
}

// ReadOAM returns the byte at the given bus address (0xFE00-0xFE9F).
// While DMA is active the CPU reads 0xFF.
func (p *PPU) ReadOAM(address uint16) uint8 {
	if p.dma.Active() {
		return 0xFF
	}
	return p.oam[address-addr.OAMStart]
}

// WriteOAM stores a byte into OAM; writes are dropped while DMA is active.
func (p *PPU) WriteOAM(address uint16, value uint8) {
	if p.dma.Active() {
		return
	}
	p.oam[address-addr.OAMStart] = value
}

// ReadRegister reads one of the LCD registers (0xFF40-0xFF4B).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.control
	case addr.STAT:
		return p.status
	case addr.SCY:
		return p.scrollY
	case addr.SCX:
		return p.scrollX
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.DMA:
		return p.dma.Value()
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp[0]
	case addr.OBP1:
		return p.obp[1]
	case addr.WY:
		return p.windowY
	case addr.WX:
		return p.windowX
	default:
		return 0
	}
}

// WriteRegister writes one of the LCD registers. LY is read-only; a write to
// the DMA register starts an OAM copy; palette writes rebuild the lookup
// tables. The OBP sources mask their low two bits because color 0 is
// transparent for sprites.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		p.control = value
	case addr.STAT:
		p.status = value
	case addr.SCY:
		p.scrollY = value
	case addr.SCX:
		p.scrollX = value
	case addr.LY:
		// read only
	case addr.LYC:
		p.lyc = value
	case addr.DMA:
		p.dma.Start(value)
	case addr.BGP:
		p.bgp = value
		p.bgColors = buildPalette(value)
	case addr.OBP0:
		p.obp[0] = value
		p.sp0Colors = buildPalette(value & 0xFC)
	case addr.OBP1:
		p.obp[1] = value
		p.sp1Colors = buildPalette(value & 0xFC)
	case addr.WY:
		p.windowY = value
	case addr.WX:
		p.windowX = value
	}
}

// buildPalette expands a palette register (four packed 2 bit indexes) into
// RGBA values.
func buildPalette(data uint8) [4]GBColor {
	var colors [4]GBColor
	for i := range colors {
		colors[i] = shades[(data>>(i*2))&0b11]
	}
	return colors
}
