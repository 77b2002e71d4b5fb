package gbcore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/valerio/go-gbcore/gbcore/cpu"
	"github.com/valerio/go-gbcore/gbcore/memory"
	"github.com/valerio/go-gbcore/gbcore/serial"
	"github.com/valerio/go-gbcore/gbcore/video"
)

// DMG is the root struct and entry point for running the emulation. It owns
// the whole machine: the CPU drives the MMU, which in turn owns every
// peripheral, so there is exactly one logical thread of control and no
// shared mutation across components.
type DMG struct {
	cpu *cpu.CPU
	mmu *memory.MMU

	instructionCount uint64
}

// New creates an emulator with no cartridge loaded.
func New() *DMG {
	return newWithMMU(memory.New())
}

// NewWithData creates an emulator with the given ROM image loaded.
func NewWithData(data []byte) (*DMG, error) {
	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM data", "size", len(data), "title", cart.Title(), "checksum_valid", cart.ChecksumValid())

	return newWithMMU(memory.NewWithCartridge(cart)), nil
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewWithData(data)
}

func newWithMMU(mmu *memory.MMU) *DMG {
	return &DMG{
		cpu: cpu.New(mmu),
		mmu: mmu,
	}
}

// Step executes a single instruction (or idle cycle while halted) and
// returns the T-cycles consumed. Peripherals have already been advanced in
// lockstep by the time it returns.
func (d *DMG) Step() (int, error) {
	cycles, err := d.cpu.Step()
	if err != nil {
		return cycles, err
	}
	d.instructionCount++
	return cycles, nil
}

// RunFrame steps the machine until the PPU finishes the current frame.
func (d *DMG) RunFrame() error {
	frame := d.mmu.PPU().CurrentFrame()
	for d.mmu.PPU().CurrentFrame() == frame {
		if _, err := d.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run executes up to maxInstructions steps (a halted idle step counts as
// one). It stops early when the serial output contains "Passed" or
// "Failed"; the output is checked every 0x10000 steps.
func (d *DMG) Run(maxInstructions uint64) error {
	for i := uint64(0); i < maxInstructions; i++ {
		if _, err := d.Step(); err != nil {
			return err
		}

		if i%0x10000 == 0 {
			out := d.SerialOutput()
			if strings.Contains(out, "Passed") || strings.Contains(out, "Failed") {
				return nil
			}
		}
	}
	return nil
}

// SerialOutput returns everything the guest has written to the link port.
func (d *DMG) SerialOutput() string {
	if sink, ok := d.mmu.Serial().(*serial.LogSink); ok {
		return sink.Output()
	}
	return ""
}

// GetCurrentFrame returns the PPU's framebuffer.
func (d *DMG) GetCurrentFrame() *video.FrameBuffer {
	return d.mmu.PPU().Framebuffer()
}

// GetCPU returns the CPU, mostly for debugging.
func (d *DMG) GetCPU() *cpu.CPU {
	return d.cpu
}

// GetMMU returns the memory unit.
func (d *DMG) GetMMU() *memory.MMU {
	return d.mmu
}

// GetInstructionCount returns the number of steps executed so far: one per
// instruction, plus one per idle step while halted.
func (d *DMG) GetInstructionCount() uint64 {
	return d.instructionCount
}

// GetFrameCount returns the number of frames completed so far.
func (d *DMG) GetFrameCount() uint64 {
	return d.mmu.PPU().CurrentFrame()
}

// DebugState renders a one-line summary of the machine, for traces.
func (d *DMG) DebugState() string {
	return fmt.Sprintf("pc=0x%04X frame=%d instructions=%d",
		d.cpu.GetPC(), d.GetFrameCount(), d.instructionCount)
}
