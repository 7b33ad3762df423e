// Package capture exports rendered calendar pages to PNG via headless
// Chromium. It is strictly a post-pipeline collaborator: it consumes a URL
// (file:// or http://) whose page signals readiness, and knows nothing about
// shifts or layout.
package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultTimeout = 30 * time.Second

// paper viewport presets at 96dpi.
var viewports = map[string][2]int{
	"letter": {816, 1056},
	"a4":     {794, 1123},
	"legal":  {816, 1344},
}

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar?view=week"
	// or a file:// path to a rendered page.
	URL string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// PaperSize / Orientation select the viewport to emulate. Unknown
	// sizes fall back to letter.
	PaperSize   string
	Orientation string

	// Timeout bounds the entire capture. Zero means a sane default.
	Timeout time.Duration
}

// Viewport resolves the pixel dimensions implied by the paper settings.
func (o Options) Viewport() (width, height int) {
	dims, ok := viewports[o.PaperSize]
	if !ok {
		dims = viewports["letter"]
	}
	width, height = dims[0], dims[1]
	if o.Orientation == "landscape" {
		width, height = height, width
	}
	return width, height
}

// PNG navigates headless Chromium to opts.URL, waits for the page's
// data-ready attribute, and writes a full-page PNG screenshot.
//
// Readiness contract: the rendered calendar page exposes
// <div data-ready="true" ...> once its content is in place; capture waits
// for that selector before shooting.
func PNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	width, height := opts.Viewport()

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}
