// Package ppu implements the NES Picture Processing Unit: VRAM,
// palette RAM and OAM storage with nametable mirroring, the register
// file addressed through the CPU bus at 0x2000-0x2007, and the
// per-cycle scanline/dot state machine that raises NMI at VBlank.
package ppu

import "github.com/StefanJo3107/nesrs/cartridge"

const (
	vramSize    = 0x0800 // 2 KiB, two logical nametables
	oamSize     = 256
	paletteSize = 32

	dotsPerScanline     = 341
	scanlinesPerFrame   = 262
	vblankStartScanline = 241
	preRenderScanline   = 261
)

// PPU holds all NES picture-processing state: pattern data borrowed
// from the cartridge, nametable/palette/OAM RAM, the register file and
// the scanline/dot counters that drive NMI and frame timing.
type PPU struct {
	chr       []uint8
	mirroring cartridge.Mirroring

	vram       [vramSize]uint8
	paletteRAM [paletteSize]uint8
	oam        [oamSize]uint8

	control uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	// addrLatch is the shared first/second-write toggle for both the
	// Scroll and Address registers; reading Status resets it.
	addrLatch bool

	vramAddr uint16 // 14-bit current VRAM address (Address register)
	scrollX  uint8
	scrollY  uint8

	readBuffer uint8

	scanline int
	dot      int

	nmiPending bool
}

// New returns a PPU wired to the cartridge's CHR-ROM and mirroring
// mode. The PPU starts on the pre-render scanline with VBlank clear,
// so the first frame boundary is reached after that single scanline.
func New(chr []uint8, mirroring cartridge.Mirroring) *PPU {
	return &PPU{
		chr:       chr,
		mirroring: mirroring,
		scanline:  preRenderScanline,
	}
}

// WriteControl handles a CPU write to 0x2000. Setting the NMI-enable
// bit while Status.VBlank is already set raises NMI immediately.
func (p *PPU) WriteControl(val uint8) {
	wasEnabled := p.control&CtrlNMIEnable != 0
	p.control = val
	nowEnabled := p.control&CtrlNMIEnable != 0
	if !wasEnabled && nowEnabled && p.status&StatusVBlank != 0 {
		p.nmiPending = true
	}
}

// WriteMask handles a CPU write to 0x2001.
func (p *PPU) WriteMask(val uint8) {
	p.mask = val
}

// ReadStatus handles a CPU read of 0x2002: returns VBlank/sprite-0-hit/
// sprite-overflow in the top three bits, then clears VBlank and resets
// the address/scroll write latch.
func (p *PPU) ReadStatus() uint8 {
	v := p.status
	p.status &^= StatusVBlank
	p.addrLatch = false
	return v
}

// WriteOAMAddr handles a CPU write to 0x2003.
func (p *PPU) WriteOAMAddr(val uint8) {
	p.oamAddr = val
}

// ReadOAMData handles a CPU read of 0x2004. Unlike PPUDATA, OAM reads
// do not auto-increment the address.
func (p *PPU) ReadOAMData() uint8 {
	return p.oam[p.oamAddr]
}

// WriteOAMData handles a CPU write to 0x2004, including the writes an
// OAM DMA performs one byte at a time. Writes post-increment OAMADDR.
func (p *PPU) WriteOAMData(val uint8) {
	p.oam[p.oamAddr] = val
	p.oamAddr++
}

// WriteScroll handles a CPU write to 0x2005: first write is X, second
// is Y, toggled by the shared address latch.
func (p *PPU) WriteScroll(val uint8) {
	if !p.addrLatch {
		p.scrollX = val
	} else {
		p.scrollY = val
	}
	p.addrLatch = !p.addrLatch
}

// WriteAddress handles a CPU write to 0x2006: first write is the high
// 6 bits, second is the low 8 bits, of the 14-bit VRAM address.
func (p *PPU) WriteAddress(val uint8) {
	if !p.addrLatch {
		p.vramAddr = (p.vramAddr & 0x00FF) | (uint16(val&0x3F) << 8)
	} else {
		p.vramAddr = (p.vramAddr & 0x3F00) | uint16(val)
	}
	p.addrLatch = !p.addrLatch
}

// vramIncrement returns how much PPUDATA access advances the VRAM
// address: 1 normally, 32 if Control bit 2 is set.
func (p *PPU) vramIncrement() uint16 {
	if p.control&CtrlVRAMIncrement != 0 {
		return 32
	}
	return 1
}

// ReadData handles a CPU read of 0x2007. Reads below the palette range
// go through a one-access-delayed buffer; palette reads return
// immediately but still refresh the buffer from the mirrored-down
// nametable byte underneath the palette address.
func (p *PPU) ReadData() uint8 {
	addr := p.vramAddr
	p.vramAddr += p.vramIncrement()

	if addr >= 0x3F00 {
		p.readBuffer = p.vram[p.nametableIndex(addr-0x1000)]
		return p.readPalette(addr)
	}

	result := p.readBuffer
	p.readBuffer = p.readInternal(addr)
	return result
}

// WriteData handles a CPU write of 0x2007.
func (p *PPU) WriteData(val uint8) {
	addr := p.vramAddr
	p.vramAddr += p.vramIncrement()
	p.writeInternal(addr, val)
}

// readInternal reads the PPU's own 14-bit (mirrored to 16-bit)
// address space: pattern tables, nametables (via mirroring) and
// palette RAM.
func (p *PPU) readInternal(addr uint16) uint8 {
	a := addr % 0x4000
	switch {
	case a < 0x2000:
		if len(p.chr) == 0 {
			return 0
		}
		return p.chr[a]
	case a < 0x3F00:
		return p.vram[p.nametableIndex(a)]
	default:
		return p.readPalette(a)
	}
}

func (p *PPU) writeInternal(addr uint16, val uint8) {
	a := addr % 0x4000
	switch {
	case a < 0x2000:
		// CHR-ROM: writes ignored (no CHR-RAM in the NROM baseline).
	case a < 0x3F00:
		p.vram[p.nametableIndex(a)] = val
	default:
		p.writePalette(a, val)
	}
}

// nametableIndex maps a raw PPU-space address in 0x2000-0x3EFF down to
// a physical index into the 2 KiB VRAM array, honoring the
// cartridge's mirroring mode.
func (p *PPU) nametableIndex(addr uint16) uint16 {
	index := (addr - 0x2000) & 0x0FFF
	table := index / 0x400
	offset := index & 0x3FF

	var physical uint16
	switch p.mirroring {
	case cartridge.Horizontal:
		physical = map[uint16]uint16{0: 0, 1: 0, 2: 1, 3: 1}[table]
	case cartridge.Vertical:
		physical = map[uint16]uint16{0: 0, 1: 1, 2: 0, 3: 1}[table]
	default:
		// FourScreen needs cartridge-provided extra VRAM that the NROM
		// baseline doesn't have; fall back to vertical, as documented.
		physical = map[uint16]uint16{0: 0, 1: 1, 2: 0, 3: 1}[table]
	}

	return physical*0x400 + offset
}

// paletteIndex resolves the palette-RAM mirroring rules: 0x10/14/18/1C
// alias 0x00/04/08/0C, and the whole 32-byte table repeats every 0x20.
func paletteIndex(addr uint16) uint16 {
	i := (addr - 0x3F00) % 0x20
	switch i {
	case 0x10, 0x14, 0x18, 0x1C:
		i -= 0x10
	}
	return i
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.paletteRAM[paletteIndex(addr)]
}

func (p *PPU) writePalette(addr uint16, val uint8) {
	p.paletteRAM[paletteIndex(addr)] = val
}

// Tick advances the PPU by n PPU cycles (the caller is responsible for
// the 3x-per-CPU-cycle ratio) and reports whether a frame boundary
// (scanline 261 -> 0) was crossed during this call.
func (p *PPU) Tick(n int) (frameComplete bool) {
	for i := 0; i < n; i++ {
		if p.tickOne() {
			frameComplete = true
		}
	}
	return frameComplete
}

func (p *PPU) tickOne() (frameComplete bool) {
	p.dot++
	if p.dot < dotsPerScanline {
		return false
	}
	p.dot = 0
	p.scanline++

	switch {
	case p.scanline == vblankStartScanline:
		p.status |= StatusVBlank
		if p.control&CtrlNMIEnable != 0 {
			p.nmiPending = true
		}
	case p.scanline == preRenderScanline:
		p.status &^= StatusVBlank | StatusSprite0Hit | StatusSpriteOverflow
	case p.scanline > preRenderScanline:
		p.scanline = 0
		frameComplete = true
	}

	return frameComplete
}

// PollNMI consumes and returns the PPU's pending NMI flag.
func (p *PPU) PollNMI() bool {
	v := p.nmiPending
	p.nmiPending = false
	return v
}

// Mirroring exposes the cartridge mirroring mode in effect, mostly for
// tests and debugging frontends.
func (p *PPU) Mirroring() cartridge.Mirroring {
	return p.mirroring
}
