package device

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"time"

	"github.com/autowsgr/helmsman/log"
)

// ADBController drives a single device by shelling out to the adb binary.
// It does not reimplement the ADB wire protocol; it wraps the same `adb`
// CLI a human operator would use, the way tools/release wraps git in the
// teacher repo.
type ADBController struct {
	serial string
	adbBin string
	info   Info
}

// NewADBController creates a controller for the device with the given
// serial (as shown by `adb devices`). If adbBin is empty, "adb" is used
// from $PATH.
func NewADBController(serial, adbBin string) *ADBController {
	if adbBin == "" {
		adbBin = "adb"
	}
	return &ADBController{serial: serial, adbBin: adbBin}
}

func (c *ADBController) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-s", c.serial}, args...)
	cmd := exec.CommandContext(ctx, c.adbBin, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("device: adb %v: %w (%s)", args, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (c *ADBController) Connect(ctx context.Context) (Info, error) {
	out, err := c.run(ctx, "shell", "wm", "size")
	if err != nil {
		return Info{}, fmt.Errorf("device: connect: %w", err)
	}
	w, h := parseWMSize(string(out))
	c.info = Info{Serial: c.serial, Width: w, Height: h}
	log.Info("device connected", log.F("serial", c.serial), log.F("width", w), log.F("height", h))
	return c.info, nil
}

func (c *ADBController) Disconnect() error {
	return nil
}

func (c *ADBController) Screenshot(ctx context.Context) (image.Image, error) {
	out, err := c.run(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrDeviceTimeout
		}
		return nil, fmt.Errorf("device: screenshot: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("device: decode screenshot: %w", err)
	}
	return img, nil
}

func (c *ADBController) Click(ctx context.Context, x, y float64) error {
	px, py := c.toPixels(x, y)
	_, err := c.run(ctx, "shell", "input", "tap", itoa(px), itoa(py))
	return err
}

func (c *ADBController) Swipe(ctx context.Context, x1, y1, x2, y2 float64, duration time.Duration) error {
	px1, py1 := c.toPixels(x1, y1)
	px2, py2 := c.toPixels(x2, y2)
	ms := int(duration / time.Millisecond)
	_, err := c.run(ctx, "shell", "input", "swipe", itoa(px1), itoa(py1), itoa(px2), itoa(py2), itoa(ms))
	return err
}

func (c *ADBController) LongTap(ctx context.Context, x, y float64, duration time.Duration) error {
	return c.Swipe(ctx, x, y, x, y, duration)
}

func (c *ADBController) Key(ctx context.Context, code int) error {
	_, err := c.run(ctx, "shell", "input", "keyevent", itoa(code))
	return err
}

func (c *ADBController) Text(ctx context.Context, s string) error {
	_, err := c.run(ctx, "shell", "input", "text", shellQuote(s))
	return err
}

func (c *ADBController) Shell(ctx context.Context, cmd string) (string, error) {
	out, err := c.run(ctx, "shell", cmd)
	return string(out), err
}

func (c *ADBController) toPixels(x, y float64) (int, int) {
	return int(x * float64(c.info.Width)), int(y * float64(c.info.Height))
}

func itoa(n int) string { return strconv.Itoa(n) }

// shellQuote replaces spaces with %s, the convention `adb shell input text`
// requires since the text argument is itself split on spaces.
func shellQuote(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			out = append(out, '%', 's')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// parseWMSize parses the "Physical size: WxH" line `adb shell wm size`
// prints.
func parseWMSize(out string) (w, h int) {
	n, _ := fmt.Sscanf(out, "Physical size: %dx%d", &w, &h)
	if n < 2 {
		return 0, 0
	}
	return w, h
}
