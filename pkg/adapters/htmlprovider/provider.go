// Package htmlprovider renders frames of an HTML animation in headless Chrome.
//
// The page drives the animation through a global function
//
//	window.renderFrame(index, time, fps)
//
// which draws the requested frame and may return a Promise. Returning false
// (or resolving to false) ends the stream.
package htmlprovider

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/user/framerecorder/pkg/ports"
)

// DefaultFrameTimeout bounds how long one frame may take to render.
const DefaultFrameTimeout = 30 * time.Second

var (
	// ErrNotStarted is reported when frames are requested before Start.
	ErrNotStarted = errors.New("htmlprovider: not started")

	// ErrClosed is reported when frames are requested after Close.
	ErrClosed = errors.New("htmlprovider: closed")

	// ErrNoRenderFunction is returned when the page defines no renderFrame.
	ErrNoRenderFunction = errors.New("htmlprovider: window.renderFrame is not a function")

	// ErrRenderFailed is reported through Err when a frame cannot be rendered.
	ErrRenderFailed = errors.New("htmlprovider: failed to render frame")
)

// Options configures a Provider.
type Options struct {
	Source       string // URL or local HTML file
	Width        int
	Height       int
	MaxFrames    int // Zero means no limit
	ChromePath   string
	Headful      bool
	FrameTimeout time.Duration
}

// Provider implements ports.FrameProvider by screenshotting a page.
type Provider struct {
	opts     Options
	renderer ports.Renderer
	logger   ports.Logger

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	ctx           context.Context

	err error
}

// New creates a new Provider. Call Start before recording.
func New(renderer ports.Renderer, logger ports.Logger, opts Options) *Provider {
	if opts.FrameTimeout <= 0 {
		opts.FrameTimeout = DefaultFrameTimeout
	}
	return &Provider{
		opts:     opts,
		renderer: renderer,
		logger:   logger,
		err:      ErrNotStarted,
	}
}

// Start launches the browser and loads the page at the frame size.
func (p *Provider) Start(ctx context.Context) error {
	pageURL, err := SourceURL(p.opts.Source)
	if err != nil {
		return err
	}

	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(p.opts.Width, p.opts.Height),
	}
	if !p.opts.Headful {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}
	if chromePath := ResolveChromePath(p.opts.ChromePath); chromePath != "" {
		chromedpOpts = append(chromedpOpts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedpOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	p.logger.Info("Loading %s", pageURL)

	var hasRender bool
	if err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(int64(p.opts.Width), int64(p.opts.Height), 1, false),
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(`typeof window.renderFrame === "function"`, &hasRender),
	); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("load page: %w", err)
	}
	if !hasRender {
		browserCancel()
		allocCancel()
		return ErrNoRenderFunction
	}

	p.ctx = browserCtx
	p.allocCancel = allocCancel
	p.browserCancel = browserCancel
	p.err = nil
	return nil
}

// RequestFrame renders and captures frame. It returns nil when the page ends
// the animation, MaxFrames is reached, or rendering fails (see Err).
func (p *Provider) RequestFrame(frame int, at float64, fps int) image.Image {
	if p.err != nil {
		return nil
	}
	if p.ctx == nil {
		p.err = ErrClosed
		return nil
	}
	if p.opts.MaxFrames > 0 && frame >= p.opts.MaxFrames {
		return nil
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.opts.FrameTimeout)
	defer cancel()

	var more bool
	var shot []byte
	err := chromedp.Run(ctx,
		chromedp.Evaluate(RenderExpression(frame, at, fps), &more, awaitPromise),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if !more {
				return nil
			}
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		p.err = fmt.Errorf("%w: frame %d: %w", ErrRenderFailed, frame, err)
		return nil
	}
	if !more {
		p.logger.Debug("Page ended the animation at frame %d", frame)
		return nil
	}

	img, err := p.renderer.DecodeImage(shot, ports.FormatPNG)
	if err != nil {
		p.err = fmt.Errorf("%w: frame %d: %w", ErrRenderFailed, frame, err)
		return nil
	}
	return img
}

// Err returns the failure that ended the stream, if any.
func (p *Provider) Err() error {
	return p.err
}

// Close shuts the browser down.
func (p *Provider) Close() {
	if p.browserCancel != nil {
		p.browserCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
	p.ctx = nil
}

// RenderExpression returns the script that renders one frame and evaluates
// to whether the animation continues.
func RenderExpression(frame int, at float64, fps int) string {
	return fmt.Sprintf("Promise.resolve(window.renderFrame(%d, %s, %d)).then(r => r !== false)",
		frame, strconv.FormatFloat(at, 'g', -1, 64), fps)
}

// SourceURL turns a URL or a local file path into a URL Chrome can load.
func SourceURL(source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("htmlprovider: empty source")
	}
	if u, err := url.Parse(source); err == nil && len(u.Scheme) > 1 &&
		(u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "file" || u.Scheme == "data") {
		return source, nil
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", source, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String(), nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

var (
	_ ports.FrameProvider      = (*Provider)(nil)
	_ ports.FrameProviderError = (*Provider)(nil)
)
