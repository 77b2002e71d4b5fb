package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-gbcore/gbcore/bit"
	"github.com/valerio/go-gbcore/gbcore/memory"
)

// CPU is the SM83 interpreter. It owns no peripherals directly; every memory
// access goes through the MMU, and every M-cycle it charges fans out to the
// peripherals as four T-cycles before the access result is used.
type CPU struct {
	memory *memory.MMU

	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	halted   bool
	stepping bool
	// enablingIME latches EI's one-instruction delay: IME is promoted only
	// after the next instruction's execute phase.
	enablingIME bool

	currentOpcode uint8
	cycles        int // T-cycles charged in the current step
}

// New returns a CPU in the post-boot state, ready to execute from 0x0100.
func New(mmu *memory.MMU) *CPU {
	return &CPU{
		memory: mmu,
		a:      0x01,
		f:      0xB0,
		b:      0x00,
		c:      0x13,
		d:      0x00,
		e:      0xD8,
		h:      0x01,
		l:      0x4D,
		pc:     0x0100,
		sp:     0xFFFE,
	}
}

// GetPC returns the current program counter.
func (c *CPU) GetPC() uint16 {
	return c.pc
}

// Halted reports whether the CPU is sleeping in HALT.
func (c *CPU) Halted() bool {
	return c.halted
}

// SetStepping toggles the debugger stepping flag; it has no effect on
// execution.
func (c *CPU) SetStepping(on bool) {
	c.stepping = on
}

// Stepping returns the debugger stepping flag.
func (c *CPU) Stepping() bool {
	return c.stepping
}

// emuCycles charges n M-cycles, advancing the peripherals by 4n T-cycles.
// It is called at the exact sub-instruction point where each memory access
// or internal delay occurs.
func (c *CPU) emuCycles(n int) {
	c.cycles += n * 4
	c.memory.Tick(n * 4)
}

// Step executes one instruction (or one idle cycle when halted), services a
// pending interrupt if IME is set, and applies EI's delayed enable.
// It returns the T-cycles consumed.
func (c *CPU) Step() (int, error) {
	c.cycles = 0

	interrupts := c.memory.Interrupts()

	if c.halted {
		c.emuCycles(1)
		if interrupts.Flag != 0 {
			c.halted = false
		}
	} else {
		inst := c.fetchInstruction()
		if err := c.execute(inst); err != nil {
			return c.cycles, err
		}
	}

	if interrupts.MasterEnabled {
		if vector, ok := interrupts.Next(); ok {
			c.halted = false
			c.emuCycles(2)
			c.pushStack(c.pc)
			c.emuCycles(2)
			c.pc = vector
			c.emuCycles(1)
		}
	}

	if c.enablingIME {
		interrupts.MasterEnabled = true
		c.enablingIME = false
	}

	return c.cycles, nil
}

// fetchInstruction reads and decodes the opcode at PC, charging the fetch.
func (c *CPU) fetchInstruction() Instruction {
	c.currentOpcode = c.memory.Read(c.pc)
	c.pc++
	c.emuCycles(1)
	return Decode(c.currentOpcode)
}

// target is a resolved left-hand operand: either a register or a memory
// location.
type target struct {
	reg  Register
	mem  bool
	addr uint16
}

// ptrAddress resolves a register-pointer operand. 16 bit registers hold the
// address directly; 8 bit registers address the high page.
func (c *CPU) ptrAddress(reg Register) uint16 {
	if reg.Is16() {
		return c.readReg(reg)
	}
	return 0xFF00 | c.readReg(reg)
}

// fetchData resolves a right-hand operand, charging one M-cycle per memory
// read as it happens. word is true when the value is 16 bits wide.
func (c *CPU) fetchData(mode Mode) (value uint16, word bool) {
	switch mode.Kind {
	case ModeReg:
		return c.readReg(mode.Reg), mode.Reg.Is16()
	case ModeRegPtr:
		data := c.memory.Read(c.ptrAddress(mode.Reg))
		c.emuCycles(1)
		return uint16(data), false
	case ModeD8:
		data := c.memory.Read(c.pc)
		c.pc++
		c.emuCycles(1)
		return uint16(data), false
	case ModeD16:
		lo := c.memory.Read(c.pc)
		c.pc++
		c.emuCycles(1)
		hi := c.memory.Read(c.pc)
		c.pc++
		c.emuCycles(1)
		return bit.Combine(hi, lo), true
	case ModeA8:
		n := c.memory.Read(c.pc)
		c.pc++
		c.emuCycles(1)
		data := c.memory.Read(0xFF00 | uint16(n))
		c.emuCycles(1)
		return uint16(data), false
	case ModeA16:
		address, _ := c.fetchData(Mode{Kind: ModeD16})
		data := c.memory.Read(address)
		c.emuCycles(1)
		return uint16(data), false
	}
	return 0, false
}

// fetchTarget resolves a left-hand operand. Immediate address operands are
// consumed (and charged) here; register pointers resolve at write time.
func (c *CPU) fetchTarget(mode Mode) target {
	switch mode.Kind {
	case ModeReg, ModeRegPtr:
		return target{reg: mode.Reg, mem: mode.Kind == ModeRegPtr}
	case ModeA8:
		n := c.memory.Read(c.pc)
		c.pc++
		c.emuCycles(1)
		return target{mem: true, reg: RegNone, addr: 0xFF00 | uint16(n)}
	case ModeA16:
		address, _ := c.fetchData(Mode{Kind: ModeD16})
		return target{mem: true, reg: RegNone, addr: address}
	}
	return target{}
}

func (c *CPU) writeTarget(t target, value uint16, word bool) {
	if !t.mem {
		c.writeReg(t.reg, value)
		return
	}

	address := t.addr
	if t.reg != RegNone {
		address = c.ptrAddress(t.reg)
	}

	if word {
		c.writeBus16(address, value)
		c.emuCycles(2)
	} else {
		c.memory.Write(address, uint8(value))
		c.emuCycles(1)
	}
}

func (c *CPU) writeBus16(address uint16, value uint16) {
	c.memory.Write(address, bit.Low(value))
	c.memory.Write(address+1, bit.High(value))
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.memory.Write(c.sp, bit.High(value))
	c.sp--
	c.memory.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	lo := c.memory.Read(c.sp)
	c.sp++
	hi := c.memory.Read(c.sp)
	c.sp++
	return bit.Combine(hi, lo)
}

func (c *CPU) checkCondition(cond Condition) bool {
	switch cond {
	case CondNone:
		return true
	case CondNZ:
		return !c.isSetFlag(zeroFlag)
	case CondZ:
		return c.isSetFlag(zeroFlag)
	case CondNC:
		return !c.isSetFlag(carryFlag)
	case CondC:
		return c.isSetFlag(carryFlag)
	}
	return false
}

// gotoAddr moves PC when the condition holds, charging the branch cycle and,
// for calls, the stack activity.
func (c *CPU) gotoAddr(cond Condition, address uint16, push bool) {
	if !c.checkCondition(cond) {
		return
	}
	if push {
		c.emuCycles(2)
		c.pushStack(c.pc)
	}
	c.pc = address
	c.emuCycles(1)
}

func (c *CPU) execute(inst Instruction) error {
	switch inst.Kind {
	case KindNOP:

	case KindLD:
		t := c.fetchTarget(inst.Dst)
		value, word := c.fetchData(inst.Src)
		c.writeTarget(t, value, word)
		// LD SP, HL pays an internal cycle for the 16 bit move
		if !t.mem && inst.Dst.Reg.Is16() && inst.Src.Kind == ModeReg && inst.Src.Reg.Is16() {
			c.emuCycles(1)
		}

	case KindLDIStore:
		hl := c.getHL()
		c.memory.Write(hl, c.a)
		c.emuCycles(1)
		c.setHL(hl + 1)

	case KindLDILoad:
		hl := c.getHL()
		c.a = c.memory.Read(hl)
		c.emuCycles(1)
		c.setHL(hl + 1)

	case KindLDDStore:
		hl := c.getHL()
		c.memory.Write(hl, c.a)
		c.emuCycles(1)
		c.setHL(hl - 1)

	case KindLDDLoad:
		hl := c.getHL()
		c.a = c.memory.Read(hl)
		c.emuCycles(1)
		c.setHL(hl - 1)

	case KindLDHLSP:
		rel, _ := c.fetchData(d8)
		sp := c.sp
		c.emuCycles(1)
		c.setHL(sp + uint16(int8(uint8(rel))))
		// H and C come from the unsigned low nibble/byte additions on SP
		c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(rel&0xF) >= 0x10)
		c.setFlagToCondition(carryFlag, (sp&0xFF)+(rel&0xFF) >= 0x100)
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)

	case KindINC:
		if inst.Dst.Reg.Is16() {
			c.emuCycles(1)
			c.writeReg(inst.Dst.Reg, c.readReg(inst.Dst.Reg)+1)
			break
		}
		value := uint8(c.readReg(inst.Dst.Reg)) + 1
		c.writeReg(inst.Dst.Reg, uint16(value))
		c.setFlagToCondition(zeroFlag, value == 0)
		c.setFlagToCondition(halfCarryFlag, value&0xF == 0)
		c.resetFlag(subFlag)

	case KindDEC:
		if inst.Dst.Reg.Is16() {
			c.emuCycles(1)
			c.writeReg(inst.Dst.Reg, c.readReg(inst.Dst.Reg)-1)
			break
		}
		value := uint8(c.readReg(inst.Dst.Reg)) - 1
		c.writeReg(inst.Dst.Reg, uint16(value))
		c.setFlagToCondition(zeroFlag, value == 0)
		c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)
		c.setFlag(subFlag)

	case KindINCHL:
		address := c.getHL()
		value := c.memory.Read(address) + 1
		c.emuCycles(1)
		c.memory.Write(address, value)
		c.emuCycles(1)
		c.setFlagToCondition(zeroFlag, value == 0)
		c.setFlagToCondition(halfCarryFlag, value&0xF == 0)
		c.resetFlag(subFlag)

	case KindDECHL:
		address := c.getHL()
		value := c.memory.Read(address) - 1
		c.emuCycles(1)
		c.memory.Write(address, value)
		c.emuCycles(1)
		c.setFlagToCondition(zeroFlag, value == 0)
		c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)
		c.setFlag(subFlag)

	case KindADD:
		value, _ := c.fetchData(inst.Src)
		c.addToA(uint8(value), 0)

	case KindADC:
		value, _ := c.fetchData(inst.Src)
		c.addToA(uint8(value), c.flagToBit(carryFlag))

	case KindSUB:
		value, _ := c.fetchData(inst.Src)
		c.subFromA(uint8(value), 0)

	case KindSBC:
		value, _ := c.fetchData(inst.Src)
		c.subFromA(uint8(value), c.flagToBit(carryFlag))

	case KindADDHL:
		operand := c.readReg(inst.Src.Reg)
		hl := c.getHL()
		c.emuCycles(1)
		c.setHL(hl + operand)
		c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(operand&0xFFF) >= 0x1000)
		c.setFlagToCondition(carryFlag, uint32(hl)+uint32(operand) > 0xFFFF)
		c.resetFlag(subFlag)

	case KindADDSP:
		rel, _ := c.fetchData(d8)
		sp := c.sp
		c.emuCycles(2)
		c.sp = sp + uint16(int8(uint8(rel)))
		c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(rel&0xF) >= 0x10)
		c.setFlagToCondition(carryFlag, (sp&0xFF)+(rel&0xFF) >= 0x100)
		c.resetFlag(zeroFlag)
		c.resetFlag(subFlag)

	case KindAND:
		value, _ := c.fetchData(inst.Src)
		c.a &= uint8(value)
		c.setFlagToCondition(zeroFlag, c.a == 0)
		c.resetFlag(subFlag)
		c.setFlag(halfCarryFlag)
		c.resetFlag(carryFlag)

	case KindXOR:
		value, _ := c.fetchData(inst.Src)
		c.a ^= uint8(value)
		c.setFlagToCondition(zeroFlag, c.a == 0)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.resetFlag(carryFlag)

	case KindOR:
		value, _ := c.fetchData(inst.Src)
		c.a |= uint8(value)
		c.setFlagToCondition(zeroFlag, c.a == 0)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.resetFlag(carryFlag)

	case KindCP:
		value, _ := c.fetchData(inst.Src)
		data := uint8(value)
		c.setFlagToCondition(zeroFlag, c.a == data)
		c.setFlag(subFlag)
		c.setFlagToCondition(halfCarryFlag, c.a&0xF < data&0xF)
		c.setFlagToCondition(carryFlag, c.a < data)

	case KindCPL:
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)

	case KindCCF:
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)

	case KindSCF:
		c.setFlag(carryFlag)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)

	case KindDAA:
		c.daa()

	case KindRLCA:
		carry := c.a >> 7
		c.a = c.a<<1 | carry
		c.setRotateFlags(carry)

	case KindRLA:
		carry := c.a >> 7
		c.a = c.a<<1 | c.flagToBit(carryFlag)
		c.setRotateFlags(carry)

	case KindRRCA:
		carry := c.a & 1
		c.a = c.a>>1 | carry<<7
		c.setRotateFlags(carry)

	case KindRRA:
		carry := c.a & 1
		c.a = c.a>>1 | c.flagToBit(carryFlag)<<7
		c.setRotateFlags(carry)

	case KindJP:
		address, _ := c.fetchData(d16)
		c.gotoAddr(inst.Cond, address, false)

	case KindJPHL:
		c.pc = c.getHL()

	case KindJR:
		rel, _ := c.fetchData(d8)
		address := c.pc + uint16(int8(uint8(rel)))
		c.gotoAddr(inst.Cond, address, false)

	case KindCALL:
		address, _ := c.fetchData(d16)
		c.gotoAddr(inst.Cond, address, true)

	case KindRET:
		if inst.Cond != CondNone {
			c.emuCycles(1)
		}
		if c.checkCondition(inst.Cond) {
			address := c.popStack()
			c.emuCycles(2)
			c.pc = address
			c.emuCycles(1)
		}

	case KindRETI:
		// unlike EI, RETI enables interrupts immediately
		c.memory.Interrupts().MasterEnabled = true
		address := c.popStack()
		c.emuCycles(2)
		c.pc = address
		c.emuCycles(1)

	case KindRST:
		c.gotoAddr(CondNone, uint16(inst.Vec), true)

	case KindPUSH:
		value := c.readReg(inst.Dst.Reg)
		c.emuCycles(1)
		c.sp--
		c.memory.Write(c.sp, bit.High(value))
		c.emuCycles(1)
		c.sp--
		c.memory.Write(c.sp, bit.Low(value))
		c.emuCycles(1)

	case KindPOP:
		lo := c.memory.Read(c.sp)
		c.sp++
		c.emuCycles(1)
		hi := c.memory.Read(c.sp)
		c.sp++
		c.emuCycles(1)
		// writing through AF masks the low nibble of F
		c.writeReg(inst.Dst.Reg, bit.Combine(hi, lo))

	case KindDI:
		c.memory.Interrupts().MasterEnabled = false

	case KindEI:
		c.enablingIME = true

	case KindHALT:
		c.halted = true

	case KindSTOP:
		slog.Warn("STOP executed, treating as NOP", "pc", fmt.Sprintf("0x%04X", c.pc))

	case KindPrefix:
		opcode, _ := c.fetchData(d8)
		c.executeCB(DecodeCB(uint8(opcode)))

	case KindIllegal:
		return fmt.Errorf("unsupported opcode 0x%02X at PC 0x%04X", c.currentOpcode, c.pc-1)
	}

	return nil
}

// addToA adds value plus an optional carry-in to A, setting all flags.
func (c *CPU) addToA(value, carryIn uint8) {
	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carryIn)
	c.a = uint8(sum)

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carryIn > 0xF)
	c.setFlagToCondition(carryFlag, sum > 0xFF)
}

// subFromA subtracts value plus an optional borrow-in from A, setting all flags.
func (c *CPU) subFromA(value, carryIn uint8) {
	a := c.a
	diff := int16(a) - int16(value) - int16(carryIn)
	c.a = uint8(diff)

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, a&0xF < value&0xF+carryIn)
	c.setFlagToCondition(carryFlag, diff < 0)
}

// setRotateFlags applies the flag pattern shared by RLCA/RLA/RRCA/RRA:
// Z, N and H cleared, C from the shifted-out bit.
func (c *CPU) setRotateFlags(carry uint8) {
	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

// daa decimal-adjusts A after an addition or subtraction so that it reads as
// packed BCD again.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
		if carry {
			a -= 0x60
		}
	} else {
		if c.isSetFlag(halfCarryFlag) || c.a&0xF > 0x9 {
			a += 0x06
		}
		if carry || c.a > 0x99 {
			a += 0x60
			carry = true
		}
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// executeCB runs one CB-prefixed instruction. The operand read (and, for
// everything but BIT, the write back) charges an extra M-cycle when the
// operand is the memory cell at HL.
func (c *CPU) executeCB(inst CBInstruction) {
	readOperand := func() uint8 {
		if inst.Reg == RegHL {
			data := c.memory.Read(c.getHL())
			c.emuCycles(1)
			return data
		}
		return uint8(c.readReg(inst.Reg))
	}
	writeOperand := func(value uint8) {
		if inst.Reg == RegHL {
			c.memory.Write(c.getHL(), value)
			c.emuCycles(1)
			return
		}
		c.writeReg(inst.Reg, uint16(value))
	}
	setShiftFlags := func(result, carry uint8) {
		c.setFlagToCondition(zeroFlag, result == 0)
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, carry != 0)
	}

	switch inst.Op {
	case CBBIT:
		data := readOperand()
		c.setFlagToCondition(zeroFlag, data&(1<<inst.Bit) == 0)
		c.resetFlag(subFlag)
		c.setFlag(halfCarryFlag)

	case CBRES:
		writeOperand(readOperand() &^ (1 << inst.Bit))

	case CBSET:
		writeOperand(readOperand() | 1<<inst.Bit)

	case CBRLC:
		data := readOperand()
		result := data<<1 | data>>7
		writeOperand(result)
		setShiftFlags(result, data>>7)

	case CBRRC:
		data := readOperand()
		result := data>>1 | data<<7
		writeOperand(result)
		setShiftFlags(result, data&1)

	case CBRL:
		data := readOperand()
		result := data<<1 | c.flagToBit(carryFlag)
		writeOperand(result)
		setShiftFlags(result, data>>7)

	case CBRR:
		data := readOperand()
		result := data>>1 | c.flagToBit(carryFlag)<<7
		writeOperand(result)
		setShiftFlags(result, data&1)

	case CBSLA:
		data := readOperand()
		result := data << 1
		writeOperand(result)
		setShiftFlags(result, data>>7)

	case CBSRA:
		data := readOperand()
		result := data>>1 | data&0x80
		writeOperand(result)
		setShiftFlags(result, data&1)

	case CBSWAP:
		data := readOperand()
		result := data>>4 | data<<4
		writeOperand(result)
		setShiftFlags(result, 0)

	case CBSRL:
		data := readOperand()
		result := data >> 1
		writeOperand(result)
		setShiftFlags(result, data&1)
	}
}
