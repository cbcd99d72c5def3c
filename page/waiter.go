package page

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/log"
)

// NavigationError is raised when a click-and-wait operation fails to
// observe its target page within timeout.
type NavigationError struct {
	Source   Name
	Target   Name
	LastPage Name
}

func (e *NavigationError) Error() string {
	last := e.LastPage
	if last == "" {
		last = "unknown"
	}
	return fmt.Sprintf("page: navigation %s -> %s timed out (last seen: %s)", e.Source, e.Target, last)
}

// DefaultTimeout and DefaultInterval are the waiter's defaults, grounded
// on original_source's page.py module constants. The navigator's poll
// interval is deliberately distinct from the combat recognizer's (300ms):
// Design Notes leaves the two loops unmerged rather than picking one
// interval for both.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

// WaitOptions configures a WaitForPage/WaitLeavePage call.
type WaitOptions struct {
	Timeout       time.Duration
	Interval      time.Duration
	Source        Name
	Target        Name
	HandleOverlays bool
	Overlays      []Overlay
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.HandleOverlays && o.Overlays == nil {
		o.Overlays = DefaultOverlays()
	}
	return o
}

// WaitForPage polls screenshots until checker reports true or the deadline
// passes, optionally dismissing known overlays in-loop so a popup blocking
// the target page doesn't stall navigation forever.
func WaitForPage(ctx context.Context, d device.Controller, checker Checker, opts WaitOptions) (image.Image, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)
	var lastPage Name

	for {
		screen, err := d.Screenshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("page: screenshot during wait: %w", err)
		}

		if checker(screen) {
			return screen, nil
		}

		if name, ok := GetCurrentPage(screen); ok {
			lastPage = name
		}

		if opts.HandleOverlays {
			dismissFirstOverlay(ctx, d, screen, opts.Overlays)
		}

		if time.Now().After(deadline) {
			return nil, &NavigationError{Source: opts.Source, Target: opts.Target, LastPage: lastPage}
		}
		time.Sleep(opts.Interval)
	}
}

// WaitLeavePage polls until currentChecker reports false (the page is no
// longer showing), for targets that don't have their own identification
// signature yet.
func WaitLeavePage(ctx context.Context, d device.Controller, currentChecker Checker, opts WaitOptions) (image.Image, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)

	for {
		screen, err := d.Screenshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("page: screenshot during leave-wait: %w", err)
		}

		if !currentChecker(screen) {
			return screen, nil
		}

		if opts.HandleOverlays {
			dismissFirstOverlay(ctx, d, screen, opts.Overlays)
		}

		if time.Now().After(deadline) {
			return nil, &NavigationError{Source: opts.Source, Target: opts.Target, LastPage: opts.Source}
		}
		time.Sleep(opts.Interval)
	}
}

// ClickAndWaitForPage clicks (x, y) then waits for checker to confirm the
// target page, retrying the whole click+wait pair up to retries times
// (default 1 retry) to tolerate a dropped tap — not just the wait.
func ClickAndWaitForPage(ctx context.Context, d device.Controller, x, y float64, checker Checker, opts WaitOptions, retries int) (image.Image, error) {
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Warn("page: retrying click+wait", log.F("attempt", attempt), log.F("target", string(opts.Target)))
			time.Sleep(opts.withDefaults().Interval)
		}
		if err := d.Click(ctx, x, y); err != nil {
			lastErr = err
			continue
		}
		screen, err := WaitForPage(ctx, d, checker, opts)
		if err == nil {
			return screen, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
