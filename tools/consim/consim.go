// Command consim runs the kernel terminal emulator against an in-memory
// framebuffer and shows the framebuffer contents in the host terminal. Each
// host cell displays two vertically stacked framebuffer pixels.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	"funcos/device/tty"
	"funcos/device/video/console/font"
	"funcos/device/video/fb"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

const halfBlock = '▀'

// palette is cycled through with Ctrl-F.
var palette = []fb.Color{fb.White, fb.Yellow, fb.Green, fb.Cyan, fb.Magenta, fb.LightGray}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[consim] error: %s\n", err.Error())
	os.Exit(1)
}

type simulator struct {
	screen tcell.Screen
	pixels []uint32
	width  uint32
	height uint32

	term    *tty.Terminal
	bold    bool
	fgIndex int
}

// newSimulator creates a terminal of cols x rows characters backed by a heap
// framebuffer.
func newSimulator(screen tcell.Screen, cols, rows uint32, bg fb.Color) (*simulator, error) {
	regular := font.Regular()
	width, height := cols*fb.GlyphWidth, rows*regular.CharSize()
	if width == 0 || height == 0 {
		return nil, errors.New("terminal size must be at least 1x1")
	}

	pixels := make([]uint32, width*height)
	surface, kerr := fb.NewSurface(fb.Descriptor{
		Addr:   uintptr(unsafe.Pointer(&pixels[0])),
		Width:  width,
		Height: height,
		Pitch:  width * 4,
	})
	if kerr != nil {
		return nil, errors.Wrap(kerr, "creating surface")
	}

	term, kerr := tty.NewTerminal(surface, regular, font.Bold())
	if kerr != nil {
		return nil, errors.Wrap(kerr, "creating terminal")
	}
	term.SetForeground(palette[0])
	term.SetBackground(bg)
	term.Clear()

	return &simulator{
		screen: screen,
		pixels: pixels,
		width:  width,
		height: height,
		term:   term,
	}, nil
}

func toTcell(c fb.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R()), int32(c.G()), int32(c.B()))
}

// draw copies the framebuffer to the screen.
func (s *simulator) draw() {
	for y := uint32(0); y < s.height; y += 2 {
		for x := uint32(0); x < s.width; x++ {
			upper := fb.Color(s.pixels[y*s.width+x])
			lower := upper
			if y+1 < s.height {
				lower = fb.Color(s.pixels[(y+1)*s.width+x])
			}

			style := tcell.StyleDefault.Foreground(toTcell(upper)).Background(toTcell(lower))
			s.screen.SetContent(int(x), int(y/2), halfBlock, nil, style)
		}
	}
	s.screen.Show()
}

// handleEvent feeds key presses to the terminal. It returns false when the
// simulator should quit.
func (s *simulator) handleEvent(ev tcell.Event) bool {
	keyEv, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	switch keyEv.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		s.term.PutByte('\n')
	case tcell.KeyTab:
		s.term.PutByte('\t')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.term.PutByte('\b')
	case tcell.KeyHome:
		s.term.PutByte('\r')
	case tcell.KeyCtrlB:
		s.bold = !s.bold
		s.term.SetBold(s.bold)
	case tcell.KeyCtrlF:
		s.fgIndex = (s.fgIndex + 1) % len(palette)
		s.term.SetForeground(palette[s.fgIndex])
	case tcell.KeyCtrlL:
		s.term.Clear()
	case tcell.KeyRune:
		if r := keyEv.Rune(); r < 0x80 {
			s.term.PutByte(byte(r))
		} else {
			// non-ASCII input renders as the replacement glyph
			s.term.PutByte(0xff)
		}
	}

	return true
}

func (s *simulator) run() {
	s.draw()
	for {
		if !s.handleEvent(s.screen.PollEvent()) {
			return
		}
		s.draw()
	}
}

func runTool() error {
	cols := flag.Uint("cols", 20, "terminal width in characters")
	rows := flag.Uint("rows", 6, "terminal height in characters")
	bgSpec := flag.String("bg", "0a0f14", "background colour as rrggbb")
	text := flag.String("text", "", "text written to the terminal before accepting input")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "consim: interactive simulator for the kernel console\n\n")
		fmt.Fprint(os.Stderr, "Usage: consim [options]\n")
		fmt.Fprint(os.Stderr, "Keys: Esc quits, Ctrl-B toggles bold, Ctrl-F cycles the foreground, Ctrl-L clears\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	bg, kerr := fb.ParseColor(*bgSpec)
	if kerr != nil {
		return errors.Wrapf(kerr, "parsing -bg %q", *bgSpec)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "opening screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "initializing screen")
	}
	defer screen.Fini()

	sim, err := newSimulator(screen, uint32(*cols), uint32(*rows), bg)
	if err != nil {
		return err
	}
	sim.term.PutString(*text)

	sim.run()
	return nil
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}
