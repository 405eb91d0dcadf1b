// Package console ties the CPU, Bus, PPU and Joypad together into the
// single stepping/running surface a host frontend or test drives: load
// a cartridge, reset, then either single-step one instruction at a
// time or run until a frame completes.
// Grounded on the teacher's console/machine.go and console/bus.go's
// Run loop, generalized from their single monolithic Run into the
// granular Reset/StepInstruction/RunFrame surface spec.md calls for.
package console

import (
	"github.com/StefanJo3107/nesrs/bus"
	"github.com/StefanJo3107/nesrs/cartridge"
	"github.com/StefanJo3107/nesrs/cpu"
	"github.com/StefanJo3107/nesrs/joypad"
	"github.com/StefanJo3107/nesrs/ppu"
)

// Console owns the whole emulated machine: a Bus (which in turn owns
// the PPU and Joypad) and the CPU that drives it.
type Console struct {
	bus *bus.Bus
	cpu *cpu.CPU
}

// New constructs a Console from an already-loaded cartridge and
// performs the initial CPU reset (loading PC from the reset vector).
func New(cart *cartridge.Cartridge) *Console {
	b := bus.New(cart)
	c := &Console{
		bus: b,
		cpu: cpu.New(b),
	}
	return c
}

// Load parses an iNES byte stream and constructs a ready-to-run
// Console, a convenience wrapping cartridge.Load+New for callers that
// don't need the intermediate Cartridge value.
func Load(data []uint8) (*Console, error) {
	cart, err := cartridge.Load(data)
	if err != nil {
		return nil, err
	}
	return New(cart), nil
}

// Reset re-initializes the CPU from the cartridge's reset vector,
// equivalent to pressing the console's reset button. PPU and RAM
// state are left untouched, matching real hardware.
func (c *Console) Reset() {
	c.cpu.Reset()
}

// SetOnFrame installs the callback invoked once per completed frame.
// The callback receives the PPU (for rendering, e.g. via ppu.Render)
// and the Joypad (for the host to update before the next read of
// 0x4016).
func (c *Console) SetOnFrame(f bus.OnFrame) {
	c.bus.SetOnFrame(f)
}

// StepInstruction executes exactly one CPU instruction (servicing a
// pending NMI first, if any), ticks the PPU the corresponding number
// of times, and returns the number of CPU cycles it consumed.
func (c *Console) StepInstruction(trace cpu.TraceFunc) (int, error) {
	return c.cpu.Step(trace)
}

// RunFrame steps instructions until the end-of-frame callback fires
// once (or would have, had one been installed), then returns. It is
// the natural granularity for a host game loop: call it once per
// vsync tick.
func (c *Console) RunFrame() error {
	frameDone := false
	prev := c.bus.OnFrameHook()
	c.bus.SetOnFrame(func(p *ppu.PPU, pad *joypad.Joypad) {
		frameDone = true
		if prev != nil {
			prev(p, pad)
		}
	})
	defer c.bus.SetOnFrame(prev)

	for !frameDone {
		if _, err := c.cpu.Step(nil); err != nil {
			return err
		}
	}
	return nil
}

// Bus exposes the owned Bus, mostly for tests and debug tooling.
func (c *Console) Bus() *bus.Bus { return c.bus }

// CPU exposes the owned CPU, mostly for tests and debug tooling.
func (c *Console) CPU() *cpu.CPU { return c.cpu }

// PPU exposes the owned PPU, a shortcut for Bus().PPU().
func (c *Console) PPU() *ppu.PPU { return c.bus.PPU() }

// Joypad exposes the owned Joypad, a shortcut for Bus().Joypad().
func (c *Console) Joypad() *joypad.Joypad { return c.bus.Joypad() }
