// Command ebitenfront is a thin ebiten host for the emulator core: it
// owns the window, polls keyboard input into the Joypad once per
// Update, drives one emulated frame, and blits the PPU's rendered
// output to the screen.
// Grounded on the teacher's gintendo.go (flag parsing, ebiten.RunGame
// wiring) and console/controller.go's key map.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/StefanJo3107/nesrs/console"
	"github.com/StefanJo3107/nesrs/frame"
	"github.com/StefanJo3107/nesrs/joypad"
	"github.com/StefanJo3107/nesrs/ppu"
)

var romFile = flag.String("rom", "", "path to an iNES ROM file")

// keys maps Joypad button bits to the host keys that drive them, in
// the same A/B/Select/Start/Up/Down/Left/Right order the hardware
// shift register reads them back in.
var keys = []struct {
	button uint8
	key    ebiten.Key
}{
	{joypad.ButtonA, ebiten.KeyZ},
	{joypad.ButtonB, ebiten.KeyX},
	{joypad.ButtonSelect, ebiten.KeyShift},
	{joypad.ButtonStart, ebiten.KeyEnter},
	{joypad.ButtonUp, ebiten.KeyUp},
	{joypad.ButtonDown, ebiten.KeyDown},
	{joypad.ButtonLeft, ebiten.KeyLeft},
	{joypad.ButtonRight, ebiten.KeyRight},
}

// game adapts a console.Console to the ebiten.Game interface.
type game struct {
	nes *console.Console
	img *ebiten.Image
}

func newGame(rom []uint8) (*game, error) {
	nes, err := console.Load(rom)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	g := &game{
		nes: nes,
		img: ebiten.NewImage(frame.Width, frame.Height),
	}
	nes.SetOnFrame(g.onFrame)
	return g, nil
}

// onFrame renders the completed frame straight into the backing
// ebiten image; it runs synchronously inside RunFrame, before Update
// returns, so there is no cross-goroutine frame buffer to synchronize.
func (g *game) onFrame(p *ppu.PPU, pad *joypad.Joypad) {
	f := ppu.Render(p)
	g.img.WritePixels(rgbaFromFrame(f))
}

func rgbaFromFrame(f *frame.Frame) []byte {
	out := make([]byte, frame.Width*frame.Height*4)
	for i := 0; i < frame.Width*frame.Height; i++ {
		out[i*4+0] = f.Pixels[i*3+0]
		out[i*4+1] = f.Pixels[i*3+1]
		out[i*4+2] = f.Pixels[i*3+2]
		out[i*4+3] = 0xFF
	}
	return out
}

func (g *game) Update() error {
	for _, k := range keys {
		g.nes.Joypad().SetButton(k.button, ebiten.IsKeyPressed(k.key))
	}
	return g.nes.RunFrame()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return frame.Width, frame.Height
}

func main() {
	flag.Parse()
	if *romFile == "" {
		log.Fatal("usage: ebitenfront -rom path/to/game.nes")
	}

	data, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("reading ROM: %v", err)
	}

	g, err := newGame(data)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(frame.Width*3, frame.Height*3)
	ebiten.SetWindowTitle("nesrs")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
