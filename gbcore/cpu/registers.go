package cpu

import "github.com/valerio/go-gbcore/gbcore/bit"

// Flag is one of the 4 possible flags used in the flag register (low part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

// flagToBit returns 1 if the flag is set, 0 otherwise.
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// The paired views compose the 8 bit halves big-endian: high register in the
// upper byte. Bits 0-3 of F do not exist in hardware, so every write through
// AF masks them off.

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

// readReg returns the value of any register; 8 bit registers are widened.
func (c *CPU) readReg(reg Register) uint16 {
	switch reg {
	case RegA:
		return uint16(c.a)
	case RegF:
		return uint16(c.f)
	case RegB:
		return uint16(c.b)
	case RegC:
		return uint16(c.c)
	case RegD:
		return uint16(c.d)
	case RegE:
		return uint16(c.e)
	case RegH:
		return uint16(c.h)
	case RegL:
		return uint16(c.l)
	case RegAF:
		return c.getAF()
	case RegBC:
		return c.getBC()
	case RegDE:
		return c.getDE()
	case RegHL:
		return c.getHL()
	case RegSP:
		return c.sp
	case RegPC:
		return c.pc
	}
	return 0
}

func (c *CPU) writeReg(reg Register, value uint16) {
	switch reg {
	case RegA:
		c.a = uint8(value)
	case RegF:
		c.f = uint8(value) & 0xF0
	case RegB:
		c.b = uint8(value)
	case RegC:
		c.c = uint8(value)
	case RegD:
		c.d = uint8(value)
	case RegE:
		c.e = uint8(value)
	case RegH:
		c.h = uint8(value)
	case RegL:
		c.l = uint8(value)
	case RegAF:
		c.setAF(value)
	case RegBC:
		c.setBC(value)
	case RegDE:
		c.setDE(value)
	case RegHL:
		c.setHL(value)
	case RegSP:
		c.sp = value
	case RegPC:
		c.pc = value
	}
}
