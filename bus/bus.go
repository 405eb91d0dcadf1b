// Package bus implements the NES CPU address map: RAM mirroring, PPU
// register dispatch, PRG-ROM access, OAM DMA, controller ports, cycle
// accounting and the per-frame callback into the host.
// https://www.nesdev.org/wiki/CPU_memory_map
package bus

import (
	"fmt"

	"github.com/StefanJo3107/nesrs/cartridge"
	"github.com/StefanJo3107/nesrs/joypad"
	"github.com/StefanJo3107/nesrs/ppu"
)

const (
	ramSize         = 0x0800 // 2 KiB of real (non-cartridge) memory
	ramMirrorEnd    = 0x1FFF
	ppuRegMirrorEnd = 0x3FFF
	oamDMA          = 0x4014
	joypad1Port     = 0x4016
	joypad2Port     = 0x4017
	prgRomStart     = 0x8000
)

// OnFrame is invoked once per frame boundary, immediately after the
// PPU's internal scanline counter wraps from its last scanline back
// to 0. ppu is read-only for the host (it may render from it, e.g.
// via ppu.Render); pad is mutable so the host's input-polling step
// can update it before the CPU next reads 0x4016.
type OnFrame func(p *ppu.PPU, pad *joypad.Joypad)

// Bus owns system RAM, the cartridge, the PPU and the joypad, and
// couples CPU cycle counting to PPU cycle counting at the fixed 3:1
// ratio.
type Bus struct {
	ram  [ramSize]uint8
	cart *cartridge.Cartridge
	ppu  *ppu.PPU
	pad  *joypad.Joypad

	cycles uint64

	onFrame OnFrame
}

// New wires a Bus to a loaded cartridge, constructing its owned PPU
// and Joypad.
func New(cart *cartridge.Cartridge) *Bus {
	return &Bus{
		cart: cart,
		ppu:  ppu.New(cart.CHR, cart.Mirroring),
		pad:  joypad.New(),
	}
}

// SetOnFrame installs the end-of-frame callback. It may be changed at
// any time; only the callback in effect at the moment a frame
// completes is invoked.
func (b *Bus) SetOnFrame(f OnFrame) {
	b.onFrame = f
}

// OnFrameHook returns the callback currently installed via SetOnFrame,
// or nil if none has been set. Mostly useful for wrapping the
// existing callback without discarding it.
func (b *Bus) OnFrameHook() OnFrame {
	return b.onFrame
}

// PPU exposes the owned PPU for read-only inspection outside a frame
// callback (tests, debuggers).
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Joypad exposes the owned Joypad.
func (b *Bus) Joypad() *joypad.Joypad { return b.pad }

// Read implements cpu.Bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= ramMirrorEnd:
		return b.ram[addr&0x07FF]
	case addr <= ppuRegMirrorEnd:
		return b.readPPURegister(0x2000 + addr&0x0007)
	case addr == joypad1Port:
		return b.pad.Read()
	case addr == joypad2Port:
		return 0 // no second controller wired
	case addr >= prgRomStart:
		return b.cart.PrgRead(addr - prgRomStart)
	default:
		return 0 // open bus: unmapped expansion/SRAM region
	}
}

// Write implements cpu.Bus.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= ramMirrorEnd:
		b.ram[addr&0x07FF] = val
	case addr <= ppuRegMirrorEnd:
		b.writePPURegister(0x2000+addr&0x0007, val)
	case addr == oamDMA:
		b.doOAMDMA(val)
	case addr == joypad1Port:
		b.pad.Write(val)
	case addr == joypad2Port:
		// no second controller wired
	case addr >= prgRomStart:
		panic(fmt.Sprintf("write to PRG-ROM at %#04x", addr))
	}
}

func (b *Bus) readPPURegister(reg uint16) uint8 {
	switch reg {
	case ppu.PPUSTATUS:
		return b.ppu.ReadStatus()
	case ppu.OAMDATA:
		return b.ppu.ReadOAMData()
	case ppu.PPUDATA:
		return b.ppu.ReadData()
	default:
		// PPUCTRL/PPUMASK/OAMADDR/PPUSCROLL/PPUADDR are write-only;
		// a real 2C02 exposes stale open-bus bits here. The spec
		// treats this as a fatal error instead, but a CPU that reads
		// a write-only register has already diverged from any real
		// ROM's behavior, so returning 0 rather than panicking keeps
		// the emulator usable for trace/debug tooling.
		return 0
	}
}

func (b *Bus) writePPURegister(reg uint16, val uint8) {
	switch reg {
	case ppu.PPUCTRL:
		b.ppu.WriteControl(val)
	case ppu.PPUMASK:
		b.ppu.WriteMask(val)
	case ppu.OAMADDR:
		b.ppu.WriteOAMAddr(val)
	case ppu.OAMDATA:
		b.ppu.WriteOAMData(val)
	case ppu.PPUSCROLL:
		b.ppu.WriteScroll(val)
	case ppu.PPUADDR:
		b.ppu.WriteAddress(val)
	case ppu.PPUDATA:
		b.ppu.WriteData(val)
	}
}

// doOAMDMA copies 256 bytes from page val<<8 into OAM one byte at a
// time through the normal OAMDATA write path, and accounts for the
// extra 513 CPU cycles a real DMA steals from the CPU (omitting the
// +1-on-odd-cycle wrinkle real hardware has).
func (b *Bus) doOAMDMA(val uint8) {
	base := uint16(val) << 8
	for i := uint16(0); i < 256; i++ {
		b.ppu.WriteOAMData(b.Read(base + i))
	}
	b.Tick(513)
}

// Tick implements cpu.Bus: advances the cycle counter and ticks the
// PPU by 3x cpuCycles, invoking the end-of-frame callback whenever
// that crosses a frame boundary.
func (b *Bus) Tick(cpuCycles int) {
	b.cycles += uint64(cpuCycles)
	if b.ppu.Tick(cpuCycles * 3) {
		if b.onFrame != nil {
			b.onFrame(b.ppu, b.pad)
		}
	}
}

// PollNMI implements cpu.Bus.
func (b *Bus) PollNMI() bool {
	return b.ppu.PollNMI()
}

// Cycles returns the total CPU cycles ticked since construction,
// mostly useful for tests and debugging frontends.
func (b *Bus) Cycles() uint64 { return b.cycles }
