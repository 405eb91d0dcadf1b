package ppu

import (
	"testing"

	"github.com/StefanJo3107/nesrs/cartridge"
)

func newTestPPU() *PPU {
	chr := make([]uint8, 0x2000)
	return New(chr, cartridge.Horizontal)
}

func TestReadStatusClearsVBlankAndLatch(t *testing.T) {
	p := newTestPPU()
	p.status |= StatusVBlank
	p.addrLatch = true

	v := p.ReadStatus()
	if v&StatusVBlank == 0 {
		t.Fatalf("ReadStatus() did not report VBlank before clearing it")
	}
	if p.status&StatusVBlank != 0 {
		t.Errorf("ReadStatus() left VBlank set")
	}
	if p.addrLatch {
		t.Errorf("ReadStatus() did not reset the address latch")
	}
}

func TestWriteAddressTwoWrite(t *testing.T) {
	p := newTestPPU()
	p.WriteAddress(0x21)
	p.WriteAddress(0x05)
	if p.vramAddr != 0x2105 {
		t.Errorf("vramAddr = %#04x, want 0x2105", p.vramAddr)
	}
}

func TestWriteScrollTwoWrite(t *testing.T) {
	p := newTestPPU()
	p.WriteScroll(10)
	p.WriteScroll(20)
	if p.scrollX != 10 || p.scrollY != 20 {
		t.Errorf("scroll = (%d,%d), want (10,20)", p.scrollX, p.scrollY)
	}
}

func TestReadDataBuffered(t *testing.T) {
	p := newTestPPU()
	p.vram[p.nametableIndex(0x2100)] = 0x42

	p.WriteAddress(0x21)
	p.WriteAddress(0x00)

	first := p.ReadData()
	if first != 0 {
		t.Errorf("first buffered read = %#02x, want 0 (stale buffer)", first)
	}
	second := p.ReadData()
	if second != 0x42 {
		t.Errorf("second read = %#02x, want 0x42", second)
	}
}

func TestReadDataPaletteNotBuffered(t *testing.T) {
	p := newTestPPU()
	p.paletteRAM[0] = 0x30

	p.WriteAddress(0x3F)
	p.WriteAddress(0x00)

	v := p.ReadData()
	if v != 0x30 {
		t.Errorf("palette read = %#02x, want 0x30 (immediate, not buffered)", v)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := newTestPPU()
	p.writePalette(0x3F00, 0x11)
	if p.readPalette(0x3F10) != 0x11 {
		t.Errorf("0x3F10 did not mirror 0x3F00")
	}
	p.writePalette(0x3F04, 0x22)
	if p.readPalette(0x3F14) != 0x22 {
		t.Errorf("0x3F14 did not mirror 0x3F04")
	}
}

func TestNametableHorizontalMirroring(t *testing.T) {
	p := newTestPPU()
	// Horizontal mirroring: table 0 and table 1 (top row) share storage,
	// as do table 2 and table 3 (bottom row).
	a := p.nametableIndex(0x2000)
	b := p.nametableIndex(0x2400)
	if a != b {
		t.Errorf("horizontal mirroring: 0x2000 -> %#04x, 0x2400 -> %#04x, want equal", a, b)
	}
	c := p.nametableIndex(0x2800)
	d := p.nametableIndex(0x2C00)
	if c != d {
		t.Errorf("horizontal mirroring: 0x2800 -> %#04x, 0x2C00 -> %#04x, want equal", c, d)
	}
	if a == c {
		t.Errorf("top and bottom rows should map to different physical tables")
	}
}

func TestNametableVerticalMirroring(t *testing.T) {
	p := newTestPPU()
	p.mirroring = cartridge.Vertical
	a := p.nametableIndex(0x2000)
	b := p.nametableIndex(0x2800)
	if a != b {
		t.Errorf("vertical mirroring: 0x2000 -> %#04x, 0x2800 -> %#04x, want equal", a, b)
	}
}

func TestNMIOnVBlankEntry(t *testing.T) {
	p := newTestPPU()
	p.control |= CtrlNMIEnable

	maxDots := dotsPerScanline * scanlinesPerFrame * 2
	reachedVBlank := false
	for i := 0; i < maxDots; i++ {
		p.Tick(1)
		if p.scanline == vblankStartScanline && p.dot == 0 {
			reachedVBlank = true
			break
		}
	}
	if !reachedVBlank {
		t.Fatalf("never reached the VBlank scanline")
	}
	if !p.PollNMI() {
		t.Fatalf("expected NMI pending on entering VBlank")
	}
	if p.PollNMI() {
		t.Errorf("PollNMI should consume the pending flag")
	}
}

func TestEnablingNMIDuringVBlankRaisesItImmediately(t *testing.T) {
	p := newTestPPU()
	p.status |= StatusVBlank

	p.WriteControl(CtrlNMIEnable)
	if !p.PollNMI() {
		t.Fatalf("enabling NMI while VBlank is set should raise NMI immediately")
	}
}

func TestFrameCompleteCadence(t *testing.T) {
	p := newTestPPU()
	// Need to observe 3 completions: a short first one (the PPU starts
	// mid-frame) plus two full steady-state frames, so budget more than
	// 3 full frames' worth of dots.
	maxDots := dotsPerScanline*scanlinesPerFrame*3 + dotsPerScanline

	// The PPU starts mid-frame (at preRenderScanline), so the first
	// frame-complete signal only finishes that one short scanline.
	// Steady-state cadence only holds from the second signal on, so
	// measure the dots between the 2nd and 3rd completions, which must
	// equal exactly one full frame: dotsPerScanline*scanlinesPerFrame.
	var completions []int
	dots := 0
	for i := 0; i < maxDots && len(completions) < 3; i++ {
		dots++
		if p.Tick(1) {
			completions = append(completions, dots)
			dots = 0
		}
	}
	if len(completions) < 3 {
		t.Fatalf("expected 3 frame-complete signals within the dot budget, got %d", len(completions))
	}
	if got := completions[2]; got != dotsPerScanline*scanlinesPerFrame {
		t.Errorf("steady-state frame length = %d dots, want exactly %d", got, dotsPerScanline*scanlinesPerFrame)
	}
	if p.scanline != 0 {
		t.Errorf("scanline right after wraparound = %d, want 0", p.scanline)
	}
}
