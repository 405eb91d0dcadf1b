package ppu

import "github.com/StefanJo3107/nesrs/frame"

const (
	tilesPerRow     = 32
	tileRows        = 30
	attributeTableOffset = 0x3C0
	spriteCount     = 64
)

// Render produces a full frame from the PPU's current state. It
// follows the documented simplification of rendering only the first
// (hardcoded) nametable, ignoring Control's nametable-select bits and
// the Scroll register — this precludes split-screen scrolling effects
// but matches every ROM that doesn't rely on them.
func Render(p *PPU) *frame.Frame {
	f := frame.New()
	p.renderBackground(f)
	p.renderSprites(f)
	return f
}

func (p *PPU) bgPatternBank() uint16 {
	if p.control&CtrlBGPatternAddr != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) spritePatternBank() uint16 {
	if p.control&CtrlSpritePatternAddr != 0 {
		return 0x1000
	}
	return 0
}

func (p *PPU) patternByte(bank uint16, tile uint8, row int) uint8 {
	addr := bank + uint16(tile)*16 + uint16(row)
	if int(addr) >= len(p.chr) {
		return 0
	}
	return p.chr[addr]
}

// paletteColor resolves a 6-bit NES color index into the displayable
// system-palette RGB triple.
func paletteColor(idx uint8) [3]byte {
	return frame.SystemPalette[idx&0x3F]
}

func (p *PPU) renderBackground(f *frame.Frame) {
	for i := 0; i < tilesPerRow*tileRows; i++ {
		col := i % tilesPerRow
		row := i / tilesPerRow

		tile := p.vram[p.nametableIndex(0x2000+uint16(i))]
		attr := p.vram[p.nametableIndex(0x2000+attributeTableOffset+uint16((row/4)*8+(col/4)))]

		quadX := (col % 4) / 2
		quadY := (row % 4) / 2
		shift := uint(quadY*2+quadX) * 2
		paletteGroup := (attr >> shift) & 0x03

		bank := p.bgPatternBank()
		for y := 0; y < 8; y++ {
			upper := p.patternByte(bank, tile, y)
			lower := p.patternByte(bank, tile, y+8)

			for x := 7; x >= 0; x-- {
				colorIdx := ((lower & 1) << 1) | (upper & 1)
				upper >>= 1
				lower >>= 1

				var nesColor uint8
				if colorIdx == 0 {
					nesColor = p.paletteRAM[0]
				} else {
					nesColor = p.paletteRAM[1+int(paletteGroup)*4+int(colorIdx)-1]
				}

				f.SetPixel(col*8+x, row*8+y, paletteColor(nesColor))
			}
		}
	}
}

func (p *PPU) renderSprites(f *frame.Frame) {
	bank := p.spritePatternBank()

	for n := spriteCount - 1; n >= 0; n-- {
		base := n * 4
		y := int(p.oam[base])
		tile := p.oam[base+1]
		attr := p.oam[base+2]
		x := int(p.oam[base+3])

		paletteIdx := attr & 0x03
		flipH := attr&0x40 != 0
		flipV := attr&0x80 != 0

		for row := 0; row < 8; row++ {
			srcRow := row
			if flipV {
				srcRow = 7 - row
			}
			upper := p.patternByte(bank, tile, srcRow)
			lower := p.patternByte(bank, tile, srcRow+8)

			for col := 7; col >= 0; col-- {
				colorIdx := ((lower & 1) << 1) | (upper & 1)
				upper >>= 1
				lower >>= 1

				if colorIdx == 0 {
					continue // transparent
				}

				dstCol := col
				if flipH {
					dstCol = 7 - col
				}

				nesColor := p.paletteRAM[0x11+int(paletteIdx)*4+int(colorIdx)-1]
				f.SetPixel(x+dstCol, y+row, paletteColor(nesColor))
			}
		}
	}
}
