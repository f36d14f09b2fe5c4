package fb

import (
	"funcos/device"
	"funcos/kernel"
	"funcos/kernel/kfmt"
	"funcos/multiboot"
	"io"
)

var (
	getFramebufferInfoFn = multiboot.GetFramebufferInfo
)

// DriverName returns the name of this driver.
func (s *Surface) DriverName() string {
	return "linear_fb"
}

// DriverVersion returns the version of this driver.
func (s *Surface) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver. The framebuffer is identity-mapped by
// the boot environment so there is nothing to map.
func (s *Surface) DriverInit(w io.Writer) *kernel.Error {
	kfmt.Fprintf(w, "%dx%d at 0x%x (pitch %d)\n", s.width, s.height, s.base, s.pitch)
	return nil
}

// probeForLinearFb checks for a 32bpp direct-colour framebuffer set up by the
// bootloader.
func probeForLinearFb() device.Driver {
	fbInfo := getFramebufferInfoFn()
	if fbInfo == nil || !fbInfo.IsXRGB8888() {
		return nil
	}

	surface, err := NewSurface(Descriptor{
		Addr:   uintptr(fbInfo.PhysAddr),
		Width:  fbInfo.Width,
		Height: fbInfo.Height,
		Pitch:  fbInfo.Pitch,
	})
	if err != nil {
		return nil
	}

	return surface
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderDisplay,
		Probe: probeForLinearFb,
	})
}
