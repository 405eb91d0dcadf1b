// Command sdlfront is an alternative host for the emulator core built
// on SDL2 instead of ebiten: a single RGB24 streaming texture holds
// the rendered frame, and keyboard events are translated directly
// into Joypad button state.
// Grounded on andrewthecodertx-go-nes-emulator/cmd/sdl-display's
// window/renderer/texture setup and event-pump loop.
package main

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/StefanJo3107/nesrs/console"
	"github.com/StefanJo3107/nesrs/frame"
	"github.com/StefanJo3107/nesrs/joypad"
	"github.com/StefanJo3107/nesrs/ppu"
)

const windowScale = 3

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: sdlfront <rom-file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("reading ROM: %v", err)
	}

	nes, err := console.Load(data)
	if err != nil {
		log.Fatalf("loading ROM: %v", err)
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		log.Fatalf("sdl.Init: %v", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(
		"nesrs",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		frame.Width*windowScale, frame.Height*windowScale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		log.Fatalf("CreateWindow: %v", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		log.Fatalf("CreateRenderer: %v", err)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB24,
		sdl.TEXTUREACCESS_STREAMING,
		frame.Width, frame.Height,
	)
	if err != nil {
		log.Fatalf("CreateTexture: %v", err)
	}
	defer texture.Destroy()

	var pixels [frame.Width * frame.Height * 3]byte
	nes.SetOnFrame(func(p *ppu.PPU, pad *joypad.Joypad) {
		f := ppu.Render(p)
		pixels = f.Pixels
	})

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				pressed := e.Type == sdl.KEYDOWN
				if button, ok := keyToButton(e.Keysym.Sym); ok {
					nes.Joypad().SetButton(button, pressed)
				} else if pressed && e.Keysym.Sym == sdl.K_ESCAPE {
					running = false
				}
			}
		}

		if err := nes.RunFrame(); err != nil {
			log.Fatalf("RunFrame: %v", err)
		}

		texture.Update(nil, unsafe.Pointer(&pixels[0]), frame.Width*3)
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		sdl.Delay(16)
	}
}

func keyToButton(sym sdl.Keycode) (uint8, bool) {
	switch sym {
	case sdl.K_z:
		return joypad.ButtonA, true
	case sdl.K_x:
		return joypad.ButtonB, true
	case sdl.K_RSHIFT:
		return joypad.ButtonSelect, true
	case sdl.K_RETURN:
		return joypad.ButtonStart, true
	case sdl.K_UP:
		return joypad.ButtonUp, true
	case sdl.K_DOWN:
		return joypad.ButtonDown, true
	case sdl.K_LEFT:
		return joypad.ButtonLeft, true
	case sdl.K_RIGHT:
		return joypad.ButtonRight, true
	default:
		return 0, false
	}
}
