// Package hal sequences hardware bring-up: it probes the registered drivers
// in detection order and connects the detected devices to the kernel's
// diagnostic and console output.
package hal

import (
	"bytes"
	"funcos/device"
	"funcos/device/serial"
	"funcos/device/tty"
	"funcos/device/video/console/font"
	"funcos/device/video/fb"
	"funcos/kernel/kfmt"
	"io"
	"sort"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	diagPort *serial.Port
	surface  *fb.Surface
	terminal *tty.Terminal

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	config  = DefaultConfig()
	strBuf  bytes.Buffer

	installTerminalFn   = tty.Install
	setOutputSinkFn     = kfmt.SetOutputSink
	setDiagnosticSinkFn = kfmt.SetDiagnosticSink
)

// ActiveTerminal returns the terminal attached to the framebuffer or nil if
// no framebuffer was detected.
func ActiveTerminal() *tty.Terminal {
	return devices.terminal
}

// ActiveSurface returns the detected framebuffer surface or nil.
func ActiveSurface() *fb.Surface {
	return devices.surface
}

// DiagnosticPort returns the serial port used for diagnostics or nil.
func DiagnosticPort() *serial.Port {
	return devices.diagPort
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers. The terminal created for the framebuffer uses the font and colours
// in cfg.
func DetectHardware(cfg Config) {
	config = cfg

	// Get driver list and sort by detection priority
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(drivers)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList) {
	var w = kfmt.PrefixWriter{Sink: halSink{}}

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()
		w.Reset()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(info, drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// halSink mirrors bring-up messages to the diagnostic channel and the
// console. Console output produced before a terminal is installed is kept by
// the kfmt early print buffer.
type halSink struct{}

func (halSink) Write(p []byte) (int, error) {
	kfmt.Log(func(w io.Writer) { _, _ = w.Write(p) })
	kfmt.Write(p)
	return len(p), nil
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func onDriverInit(_ *device.DriverInfo, drv device.Driver) {
	switch drvImpl := drv.(type) {
	case *serial.Port:
		if devices.diagPort != nil {
			return
		}

		devices.diagPort = drvImpl
		setDiagnosticSinkFn(drvImpl)
	case *fb.Surface:
		if devices.surface != nil {
			return
		}

		devices.surface = drvImpl
		onFramebufferInit(drvImpl)
	}
}

// onFramebufferInit attaches a terminal to the first detected framebuffer,
// installs it as the default terminal and routes console output to it.
func onFramebufferInit(surface *fb.Surface) {
	regular := font.FindByName(config.ConsoleFont)
	if regular == nil {
		regular = font.Regular()
	}

	term, err := tty.NewTerminal(surface, regular, font.Bold())
	if err != nil {
		kfmt.Logf("[hal] unable to attach terminal: %s\n", err.Message)
		return
	}

	term.SetForeground(config.ConsoleFg)
	term.SetBackground(config.ConsoleBg)

	devices.terminal = term
	installTerminalFn(term)
	setOutputSinkFn(tty.Console{})
}
