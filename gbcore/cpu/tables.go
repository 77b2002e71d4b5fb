package cpu

// Constructors used to keep the table below terse.

func r(reg Register) Mode  { return Mode{Kind: ModeReg, Reg: reg} }
func mr(reg Register) Mode { return Mode{Kind: ModeRegPtr, Reg: reg} }

var (
	d8  = Mode{Kind: ModeD8}
	d16 = Mode{Kind: ModeD16}
	a8  = Mode{Kind: ModeA8}
	a16 = Mode{Kind: ModeA16}
)

func op(kind Kind) Instruction          { return Instruction{Kind: kind} }
func ld(dst, src Mode) Instruction      { return Instruction{Kind: KindLD, Dst: dst, Src: src} }
func inc(reg Register) Instruction      { return Instruction{Kind: KindINC, Dst: r(reg)} }
func dec(reg Register) Instruction      { return Instruction{Kind: KindDEC, Dst: r(reg)} }
func alu(kind Kind, src Mode) Instruction {
	return Instruction{Kind: kind, Src: src}
}
func jr(cond Condition) Instruction   { return Instruction{Kind: KindJR, Cond: cond} }
func jp(cond Condition) Instruction   { return Instruction{Kind: KindJP, Cond: cond} }
func call(cond Condition) Instruction { return Instruction{Kind: KindCALL, Cond: cond} }
func ret(cond Condition) Instruction  { return Instruction{Kind: KindRET, Cond: cond} }
func rst(vec uint8) Instruction       { return Instruction{Kind: KindRST, Vec: vec} }
func push(reg Register) Instruction   { return Instruction{Kind: KindPUSH, Dst: r(reg)} }
func pop(reg Register) Instruction    { return Instruction{Kind: KindPOP, Dst: r(reg)} }

// instructions is the primary decode table. Unassigned slots keep the zero
// value, whose Kind is KindIllegal; that covers the eleven unused opcodes
// (0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD).
var instructions = [0x100]Instruction{
	// 0x0X
	0x00: op(KindNOP),
	0x01: ld(r(RegBC), d16),
	0x02: ld(mr(RegBC), r(RegA)),
	0x03: inc(RegBC),
	0x04: inc(RegB),
	0x05: dec(RegB),
	0x06: ld(r(RegB), d8),
	0x07: op(KindRLCA),
	0x08: ld(a16, r(RegSP)),
	0x09: alu(KindADDHL, r(RegBC)),
	0x0A: ld(r(RegA), mr(RegBC)),
	0x0B: dec(RegBC),
	0x0C: inc(RegC),
	0x0D: dec(RegC),
	0x0E: ld(r(RegC), d8),
	0x0F: op(KindRRCA),

	// 0x1X
	0x10: op(KindSTOP),
	0x11: ld(r(RegDE), d16),
	0x12: ld(mr(RegDE), r(RegA)),
	0x13: inc(RegDE),
	0x14: inc(RegD),
	0x15: dec(RegD),
	0x16: ld(r(RegD), d8),
	0x17: op(KindRLA),
	0x18: jr(CondNone),
	0x19: alu(KindADDHL, r(RegDE)),
	0x1A: ld(r(RegA), mr(RegDE)),
	0x1B: dec(RegDE),
	0x1C: inc(RegE),
	0x1D: dec(RegE),
	0x1E: ld(r(RegE), d8),
	0x1F: op(KindRRA),

	// 0x2X
	0x20: jr(CondNZ),
	0x21: ld(r(RegHL), d16),
	0x22: op(KindLDIStore),
	0x23: inc(RegHL),
	0x24: inc(RegH),
	0x25: dec(RegH),
	0x26: ld(r(RegH), d8),
	0x27: op(KindDAA),
	0x28: jr(CondZ),
	0x29: alu(KindADDHL, r(RegHL)),
	0x2A: op(KindLDILoad),
	0x2B: dec(RegHL),
	0x2C: inc(RegL),
	0x2D: dec(RegL),
	0x2E: ld(r(RegL), d8),
	0x2F: op(KindCPL),

	// 0x3X
	0x30: jr(CondNC),
	0x31: ld(r(RegSP), d16),
	0x32: op(KindLDDStore),
	0x33: inc(RegSP),
	0x34: op(KindINCHL),
	0x35: op(KindDECHL),
	0x36: ld(mr(RegHL), d8),
	0x37: op(KindSCF),
	0x38: jr(CondC),
	0x39: alu(KindADDHL, r(RegSP)),
	0x3A: op(KindLDDLoad),
	0x3B: dec(RegSP),
	0x3C: inc(RegA),
	0x3D: dec(RegA),
	0x3E: ld(r(RegA), d8),
	0x3F: op(KindCCF),

	// 0x4X
	0x40: ld(r(RegB), r(RegB)),
	0x41: ld(r(RegB), r(RegC)),
	0x42: ld(r(RegB), r(RegD)),
	0x43: ld(r(RegB), r(RegE)),
	0x44: ld(r(RegB), r(RegH)),
	0x45: ld(r(RegB), r(RegL)),
	0x46: ld(r(RegB), mr(RegHL)),
	0x47: ld(r(RegB), r(RegA)),
	0x48: ld(r(RegC), r(RegB)),
	0x49: ld(r(RegC), r(RegC)),
	0x4A: ld(r(RegC), r(RegD)),
	0x4B: ld(r(RegC), r(RegE)),
	0x4C: ld(r(RegC), r(RegH)),
	0x4D: ld(r(RegC), r(RegL)),
	0x4E: ld(r(RegC), mr(RegHL)),
	0x4F: ld(r(RegC), r(RegA)),

	// 0x5X
	0x50: ld(r(RegD), r(RegB)),
	0x51: ld(r(RegD), r(RegC)),
	0x52: ld(r(RegD), r(RegD)),
	0x53: ld(r(RegD), r(RegE)),
	0x54: ld(r(RegD), r(RegH)),
	0x55: ld(r(RegD), r(RegL)),
	0x56: ld(r(RegD), mr(RegHL)),
	0x57: ld(r(RegD), r(RegA)),
	0x58: ld(r(RegE), r(RegB)),
	0x59: ld(r(RegE), r(RegC)),
	0x5A: ld(r(RegE), r(RegD)),
	0x5B: ld(r(RegE), r(RegE)),
	0x5C: ld(r(RegE), r(RegH)),
	0x5D: ld(r(RegE), r(RegL)),
	0x5E: ld(r(RegE), mr(RegHL)),
	0x5F: ld(r(RegE), r(RegA)),

	// 0x6X
	0x60: ld(r(RegH), r(RegB)),
	0x61: ld(r(RegH), r(RegC)),
	0x62: ld(r(RegH), r(RegD)),
	0x63: ld(r(RegH), r(RegE)),
	0x64: ld(r(RegH), r(RegH)),
	0x65: ld(r(RegH), r(RegL)),
	0x66: ld(r(RegH), mr(RegHL)),
	0x67: ld(r(RegH), r(RegA)),
	0x68: ld(r(RegL), r(RegB)),
	0x69: ld(r(RegL), r(RegC)),
	0x6A: ld(r(RegL), r(RegD)),
	0x6B: ld(r(RegL), r(RegE)),
	0x6C: ld(r(RegL), r(RegH)),
	0x6D: ld(r(RegL), r(RegL)),
	0x6E: ld(r(RegL), mr(RegHL)),
	0x6F: ld(r(RegL), r(RegA)),

	// 0x7X
	0x70: ld(mr(RegHL), r(RegB)),
	0x71: ld(mr(RegHL), r(RegC)),
	0x72: ld(mr(RegHL), r(RegD)),
	0x73: ld(mr(RegHL), r(RegE)),
	0x74: ld(mr(RegHL), r(RegH)),
	0x75: ld(mr(RegHL), r(RegL)),
	0x76: op(KindHALT),
	0x77: ld(mr(RegHL), r(RegA)),
	0x78: ld(r(RegA), r(RegB)),
	0x79: ld(r(RegA), r(RegC)),
	0x7A: ld(r(RegA), r(RegD)),
	0x7B: ld(r(RegA), r(RegE)),
	0x7C: ld(r(RegA), r(RegH)),
	0x7D: ld(r(RegA), r(RegL)),
	0x7E: ld(r(RegA), mr(RegHL)),
	0x7F: ld(r(RegA), r(RegA)),

	// 0x8X
	0x80: alu(KindADD, r(RegB)),
	0x81: alu(KindADD, r(RegC)),
	0x82: alu(KindADD, r(RegD)),
	0x83: alu(KindADD, r(RegE)),
	0x84: alu(KindADD, r(RegH)),
	0x85: alu(KindADD, r(RegL)),
	0x86: alu(KindADD, mr(RegHL)),
	0x87: alu(KindADD, r(RegA)),
	0x88: alu(KindADC, r(RegB)),
	0x89: alu(KindADC, r(RegC)),
	0x8A: alu(KindADC, r(RegD)),
	0x8B: alu(KindADC, r(RegE)),
	0x8C: alu(KindADC, r(RegH)),
	0x8D: alu(KindADC, r(RegL)),
	0x8E: alu(KindADC, mr(RegHL)),
	0x8F: alu(KindADC, r(RegA)),

	// 0x9X
	0x90: alu(KindSUB, r(RegB)),
	0x91: alu(KindSUB, r(RegC)),
	0x92: alu(KindSUB, r(RegD)),
	0x93: alu(KindSUB, r(RegE)),
	0x94: alu(KindSUB, r(RegH)),
	0x95: alu(KindSUB, r(RegL)),
	0x96: alu(KindSUB, mr(RegHL)),
	0x97: alu(KindSUB, r(RegA)),
	0x98: alu(KindSBC, r(RegB)),
	0x99: alu(KindSBC, r(RegC)),
	0x9A: alu(KindSBC, r(RegD)),
	0x9B: alu(KindSBC, r(RegE)),
	0x9C: alu(KindSBC, r(RegH)),
	0x9D: alu(KindSBC, r(RegL)),
	0x9E: alu(KindSBC, mr(RegHL)),
	0x9F: alu(KindSBC, r(RegA)),

	// 0xAX
	0xA0: alu(KindAND, r(RegB)),
	0xA1: alu(KindAND, r(RegC)),
	0xA2: alu(KindAND, r(RegD)),
	0xA3: alu(KindAND, r(RegE)),
	0xA4: alu(KindAND, r(RegH)),
	0xA5: alu(KindAND, r(RegL)),
	0xA6: alu(KindAND, mr(RegHL)),
	0xA7: alu(KindAND, r(RegA)),
	0xA8: alu(KindXOR, r(RegB)),
	0xA9: alu(KindXOR, r(RegC)),
	0xAA: alu(KindXOR, r(RegD)),
	0xAB: alu(KindXOR, r(RegE)),
	0xAC: alu(KindXOR, r(RegH)),
	0xAD: alu(KindXOR, r(RegL)),
	0xAE: alu(KindXOR, mr(RegHL)),
	0xAF: alu(KindXOR, r(RegA)),

	// 0xBX
	0xB0: alu(KindOR, r(RegB)),
	0xB1: alu(KindOR, r(RegC)),
	0xB2: alu(KindOR, r(RegD)),
	0xB3: alu(KindOR, r(RegE)),
	0xB4: alu(KindOR, r(RegH)),
	0xB5: alu(KindOR, r(RegL)),
	0xB6: alu(KindOR, mr(RegHL)),
	0xB7: alu(KindOR, r(RegA)),
	0xB8: alu(KindCP, r(RegB)),
	0xB9: alu(KindCP, r(RegC)),
	0xBA: alu(KindCP, r(RegD)),
	0xBB: alu(KindCP, r(RegE)),
	0xBC: alu(KindCP, r(RegH)),
	0xBD: alu(KindCP, r(RegL)),
	0xBE: alu(KindCP, mr(RegHL)),
	0xBF: alu(KindCP, r(RegA)),

	// 0xCX
	0xC0: ret(CondNZ),
	0xC1: pop(RegBC),
	0xC2: jp(CondNZ),
	0xC3: jp(CondNone),
	0xC4: call(CondNZ),
	0xC5: push(RegBC),
	0xC6: alu(KindADD, d8),
	0xC7: rst(0x00),
	0xC8: ret(CondZ),
	0xC9: ret(CondNone),
	0xCA: jp(CondZ),
	0xCB: op(KindPrefix),
	0xCC: call(CondZ),
	0xCD: call(CondNone),
	0xCE: alu(KindADC, d8),
	0xCF: rst(0x08),

	// 0xDX
	0xD0: ret(CondNC),
	0xD1: pop(RegDE),
	0xD2: jp(CondNC),
	0xD4: call(CondNC),
	0xD5: push(RegDE),
	0xD6: alu(KindSUB, d8),
	0xD7: rst(0x10),
	0xD8: ret(CondC),
	0xD9: op(KindRETI),
	0xDA: jp(CondC),
	0xDC: call(CondC),
	0xDE: alu(KindSBC, d8),
	0xDF: rst(0x18),

	// 0xEX
	0xE0: ld(a8, r(RegA)),
	0xE1: pop(RegHL),
	0xE2: ld(mr(RegC), r(RegA)),
	0xE5: push(RegHL),
	0xE6: alu(KindAND, d8),
	0xE7: rst(0x20),
	0xE8: op(KindADDSP),
	0xE9: op(KindJPHL),
	0xEA: ld(a16, r(RegA)),
	0xEE: alu(KindXOR, d8),
	0xEF: rst(0x28),

	// 0xFX
	0xF0: ld(r(RegA), a8),
	0xF1: pop(RegAF),
	0xF2: ld(r(RegA), mr(RegC)),
	0xF3: op(KindDI),
	0xF5: push(RegAF),
	0xF6: alu(KindOR, d8),
	0xF7: rst(0x30),
	0xF8: op(KindLDHLSP),
	0xF9: ld(r(RegSP), r(RegHL)),
	0xFA: ld(r(RegA), a16),
	0xFB: op(KindEI),
	0xFE: alu(KindCP, d8),
	0xFF: rst(0x38),
}
