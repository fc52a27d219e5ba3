package testutil

import (
	"context"
	"os"
	"sync"

	"github.com/specialistvlad/graphvisgo/internal/renderer"
)

// FakePNG is the content FakeRenderer writes as its output image.
const FakePNG = "\x89PNG fake"

// RenderCall records one invocation of FakeRenderer.
type RenderCall struct {
	Request renderer.Request
	// Source is the content of the input file at the time of the call.
	Source string
}

// FakeRenderer stands in for the external renderer. It tracks how many
// renders are in flight at once and can be made to block until released or
// cancelled.
type FakeRenderer struct {
	// Started receives every request as its render begins, if non-nil.
	Started chan renderer.Request

	mu       sync.Mutex
	calls    []RenderCall
	live     int
	maxLive  int
	killed   int
	block    bool
	release  chan struct{}
	failWith error
}

// NewFakeRenderer returns a renderer that succeeds immediately.
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{
		Started: make(chan renderer.Request, 64),
		release: make(chan struct{}),
	}
}

// Block makes subsequent renders wait for Release or cancellation.
func (f *FakeRenderer) Block() *FakeRenderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = true
	return f
}

// Release lets one blocked render finish.
func (f *FakeRenderer) Release() {
	f.release <- struct{}{}
}

// FailWith makes subsequent renders return err.
func (f *FakeRenderer) FailWith(err error) *FakeRenderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
	return f
}

// Render implements renderer.Renderer.
func (f *FakeRenderer) Render(ctx context.Context, req renderer.Request) error {
	src, _ := os.ReadFile(req.InputPath)

	f.mu.Lock()
	f.calls = append(f.calls, RenderCall{Request: req, Source: string(src)})
	f.live++
	if f.live > f.maxLive {
		f.maxLive = f.live
	}
	block, failWith := f.block, f.failWith
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.live--
		f.mu.Unlock()
	}()

	if f.Started != nil {
		select {
		case f.Started <- req:
		default:
		}
	}

	if block {
		select {
		case <-f.release:
		case <-ctx.Done():
			f.mu.Lock()
			f.killed++
			f.mu.Unlock()
			return ctx.Err()
		}
	}
	if failWith != nil {
		return failWith
	}
	return os.WriteFile(req.OutputPath, []byte(FakePNG), 0o600)
}

// Calls returns a copy of all recorded invocations.
func (f *FakeRenderer) Calls() []RenderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RenderCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// MaxLive is the highest number of renders observed in flight together.
func (f *FakeRenderer) MaxLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

// Live is the number of renders in flight.
func (f *FakeRenderer) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// Killed counts renders that ended through cancellation.
func (f *FakeRenderer) Killed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.killed
}
