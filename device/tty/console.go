package tty

import (
	"funcos/device/video/fb"
	"funcos/kernel"
	"funcos/kernel/sync"
	"io"
)

var (
	defaultLock sync.Spinlock
	defaultTerm *Terminal

	errAlreadyInstalled = &kernel.Error{Module: "tty", Message: "default terminal already installed"}
	errNotInstalled     = &kernel.Error{Module: "tty", Message: "no default terminal installed"}
)

// Install registers t as the default terminal. It panics if a default terminal
// has already been installed.
func Install(t *Terminal) {
	defaultLock.Acquire()
	if defaultTerm != nil {
		defaultLock.Release()
		panic(errAlreadyInstalled)
	}
	defaultTerm = t
	defaultLock.Release()
}

// Installed returns true if a default terminal has been installed.
func Installed() bool {
	defaultLock.Acquire()
	defer defaultLock.Release()
	return defaultTerm != nil
}

// WithDefault runs fn against the default terminal while holding the terminal
// lock and returns its result. It panics if no terminal has been installed.
func WithDefault[R any](fn func(*Terminal) R) R {
	defaultLock.Acquire()
	defer defaultLock.Release()

	if defaultTerm == nil {
		panic(errNotInstalled)
	}

	return fn(defaultTerm)
}

// WithDefaultUnchecked runs fn against the default terminal after forcibly
// taking the terminal lock, even if another context holds it. It is meant for
// the fatal path only, where the holder can never run again. It returns false
// without invoking fn if no terminal has been installed.
func WithDefaultUnchecked(fn func(*Terminal)) bool {
	defaultLock.ForceAcquire()
	defer defaultLock.Release()

	if defaultTerm == nil {
		return false
	}

	fn(defaultTerm)
	return true
}

// Console is an io.Writer that sends its output to the default terminal. It
// is used as the kfmt output sink once a terminal has been installed.
type Console struct{}

// Write implements io.Writer.
func (Console) Write(p []byte) (int, error) {
	return WithDefault(func(t *Terminal) int {
		t.PutBytes(p)
		return len(p)
	}), nil
}

// BeginAlert switches the default terminal to the alert colour scheme (red on
// black) and returns a writer that keeps working even if the terminal lock is
// held by the context that triggered the fatal error.
func (Console) BeginAlert() io.Writer {
	WithDefaultUnchecked(func(t *Terminal) {
		t.SetBold(false)
		t.SetForeground(fb.Red)
		t.SetBackground(fb.Black)
	})
	return alertWriter{}
}

type alertWriter struct{}

func (alertWriter) Write(p []byte) (int, error) {
	WithDefaultUnchecked(func(t *Terminal) {
		t.PutBytes(p)
	})
	return len(p), nil
}
