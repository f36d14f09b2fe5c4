//go:build qemutest

package kmain

import (
	"funcos/device/debugexit"
	"funcos/device/tty"
	"funcos/device/video/console/font"
	"funcos/device/video/fb"
	"funcos/kernel/cpu"
	"funcos/kernel/kfmt"
	"funcos/kernel/linalg"
	"unsafe"
)

const (
	scratchWidth  = 64
	scratchHeight = 32
)

var scratchPixels [scratchWidth * scratchHeight]uint32

func init() {
	// The end-of-boot report goes through the fatal path; under test it
	// signals success to the hypervisor.
	kfmt.SetHaltFn(func() {
		debugexit.Exit(debugexit.Success)
		cpu.HaltForever()
	})
}

// runSelfTests exercises the exception path and the terminal on real
// hardware. Any failure exits the hypervisor with the failure code.
func runSelfTests() {
	kfmt.Logf("[selftest] breakpoint... ")
	cpu.Breakpoint()
	kfmt.Logf("[ok]\n")

	kfmt.Logf("[selftest] terminal... ")
	if !terminalSmokeTest() {
		kfmt.Logf("[failed]\n")
		debugexit.Exit(debugexit.Failed)
		cpu.HaltForever()
	}
	kfmt.Logf("[ok]\n")

	kfmt.Logf("[selftest] all tests passed\n")
	debugexit.Exit(debugexit.Success)
}

// terminalSmokeTest renders text onto an off-screen surface and checks the
// resulting cursor position and pixels.
func terminalSmokeTest() bool {
	surface, err := fb.NewSurface(fb.Descriptor{
		Addr:   uintptr(unsafe.Pointer(&scratchPixels[0])),
		Width:  scratchWidth,
		Height: scratchHeight,
		Pitch:  scratchWidth * 4,
	})
	if err != nil {
		return false
	}

	term, err := tty.NewTerminal(surface, font.Regular(), font.Bold())
	if err != nil {
		return false
	}

	term.PutString("Hi\n\t!")
	if term.Cursor() != linalg.V2[uint32](5, 1) {
		return false
	}

	// The left stroke of 'H' starts at row 3, column 1 of the first cell.
	return scratchPixels[3*scratchWidth+1] == uint32(fb.White) &&
		scratchPixels[3*scratchWidth] == uint32(fb.Black)
}
