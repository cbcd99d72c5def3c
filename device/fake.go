package device

import (
	"context"
	"fmt"
	"image"
	"time"
)

// ClickEvent records one Click call observed by a Fake.
type ClickEvent struct {
	X, Y float64
}

// Fake is an in-memory Controller driven from a scripted queue of
// screenshots. It never touches a real device or emulator; the combat
// engine, navigator, and page controller tests all drive a Fake instead of
// an ADBController.
type Fake struct {
	Frames    []image.Image
	frameIdx  int
	Info      Info
	Clicks    []ClickEvent
	Swipes    [][4]float64
	Keys      []int
	Texts     []string
	ShellLog  []string
	ShellFunc func(cmd string) (string, error)
}

// NewFake creates a Fake reporting the given resolution and serving frames
// in order from the supplied queue. If the queue is exhausted, the last
// frame is repeated.
func NewFake(width, height int, frames ...image.Image) *Fake {
	return &Fake{Frames: frames, Info: Info{Serial: "fake", Width: width, Height: height}}
}

func (f *Fake) Connect(ctx context.Context) (Info, error) { return f.Info, nil }
func (f *Fake) Disconnect() error                          { return nil }

func (f *Fake) Screenshot(ctx context.Context) (image.Image, error) {
	if len(f.Frames) == 0 {
		return nil, fmt.Errorf("device: fake has no frames queued")
	}
	idx := f.frameIdx
	if idx >= len(f.Frames) {
		idx = len(f.Frames) - 1
	} else {
		f.frameIdx++
	}
	return f.Frames[idx], nil
}

// PushFrame appends a frame to the queue, for tests that build up a
// scripted sequence incrementally.
func (f *Fake) PushFrame(img image.Image) { f.Frames = append(f.Frames, img) }

func (f *Fake) Click(ctx context.Context, x, y float64) error {
	f.Clicks = append(f.Clicks, ClickEvent{X: x, Y: y})
	return nil
}

func (f *Fake) Swipe(ctx context.Context, x1, y1, x2, y2 float64, duration time.Duration) error {
	f.Swipes = append(f.Swipes, [4]float64{x1, y1, x2, y2})
	return nil
}

func (f *Fake) LongTap(ctx context.Context, x, y float64, duration time.Duration) error {
	return f.Click(ctx, x, y)
}

func (f *Fake) Key(ctx context.Context, code int) error {
	f.Keys = append(f.Keys, code)
	return nil
}

func (f *Fake) Text(ctx context.Context, s string) error {
	f.Texts = append(f.Texts, s)
	return nil
}

func (f *Fake) Shell(ctx context.Context, cmd string) (string, error) {
	f.ShellLog = append(f.ShellLog, cmd)
	if f.ShellFunc != nil {
		return f.ShellFunc(cmd)
	}
	return "", nil
}

var _ Controller = (*Fake)(nil)
var _ Controller = (*ADBController)(nil)
