// Package kmain contains the kernel entry point invoked by the boot code.
package kmain

import (
	"funcos/device/tty"
	"funcos/device/video/fb"
	"funcos/kernel"
	"funcos/kernel/cpu"
	"funcos/kernel/gdt"
	"funcos/kernel/hal"
	"funcos/kernel/irq"
	"funcos/kernel/kfmt"
	"funcos/kernel/mem"
	"funcos/multiboot"
	"io"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Shutting down kernel."}
)

// Kmain is the only Go symbol that is visible (exported) from the boot code.
// The boot code passes the address of the multiboot info payload provided by
// the bootloader.
//
// Kmain is not expected to return. Once bring-up completes it reports the end
// of the boot sequence through the fatal path.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	// No interrupt controller is programmed; only CPU exceptions are routed.
	cpu.DisableInterrupts()
	multiboot.SetInfoPtr(multibootInfoPtr)

	cfg := hal.BootConfig()
	hal.DetectHardware(cfg)
	kfmt.Logf("[kmain] booted by %s\n", multiboot.GetBootLoaderName())

	var vendor [12]byte
	cpu.VendorID(&vendor)
	kfmt.Logf("[kmain] cpu vendor: %s\n", vendor[:])

	gdt.Init()
	kfmt.Logf("[kmain] GDT and TSS loaded\n")
	irq.Init(cfg.FaultPolicy)
	kfmt.Logf("[kmain] IDT loaded (fault policy: %s)\n", cfg.FaultPolicy.String())

	surface := hal.ActiveSurface()
	kfmt.Log(func(w io.Writer) { printBanner(w, surface) })
	if tty.Installed() {
		tty.WithDefault(func(t *tty.Terminal) struct{} {
			t.Clear()
			return struct{}{}
		})
		printBanner(tty.Console{}, surface)
	}

	runSelfTests()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// printBanner writes the kernel banner and the framebuffer geometry to w.
func printBanner(w io.Writer, surface *fb.Surface) {
	kfmt.Fprintf(w, "funcos kernel\n")
	if surface == nil {
		kfmt.Fprintf(w, "no framebuffer\n")
		return
	}

	size, unit := mem.Size(uint64(surface.Pitch()) * uint64(surface.Height())).Scale()
	kfmt.Fprintf(w, "framebuffer: %dx%d, pitch %d, %d %s\n",
		surface.Width(), surface.Height(), surface.Pitch(), size, unit)
}
