// Package device defines the contract the rest of helmsman uses to drive a
// physical or emulated Android device, plus an ADB-backed implementation and
// an in-memory fake for tests.
package device

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrDeviceTimeout is returned by Screenshot when no frame arrives within
// the caller's deadline.
var ErrDeviceTimeout = errors.New("device: screenshot timed out")

// Info describes a connected device. Resolution is reported once at
// connect time and is never consulted by recognition logic beyond logging:
// every coordinate the rest of the module passes to a Controller is
// relative.
type Info struct {
	Serial     string
	Width      int
	Height     int
}

// Controller is the full surface a combat loop or page controller needs
// from a device. Every coordinate argument is relative, in [0, 1].
type Controller interface {
	// Connect establishes the session and returns the device's reported
	// resolution.
	Connect(ctx context.Context) (Info, error)
	// Disconnect releases any held resources. Safe to call multiple times.
	Disconnect() error

	// Screenshot captures the current framebuffer as an RGB image. It
	// returns ErrDeviceTimeout if no frame is available before ctx's
	// deadline.
	Screenshot(ctx context.Context) (image.Image, error)

	// Click taps at the given relative coordinate.
	Click(ctx context.Context, x, y float64) error
	// Swipe drags from (x1, y1) to (x2, y2) over duration.
	Swipe(ctx context.Context, x1, y1, x2, y2 float64, duration time.Duration) error
	// LongTap holds a tap at (x, y) for duration.
	LongTap(ctx context.Context, x, y float64, duration time.Duration) error
	// Key sends a raw keycode (Android KEYCODE_* constants).
	Key(ctx context.Context, code int) error
	// Text injects literal text into the currently focused field.
	Text(ctx context.Context, s string) error
	// Shell runs an arbitrary command on the device and returns stdout.
	Shell(ctx context.Context, cmd string) (string, error)
}
