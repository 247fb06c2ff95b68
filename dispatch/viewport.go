package dispatch

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Router interface {
	Push(ctx context.Context, path string) error
}

type Scroller interface {
	ScrollBy(ctx context.Context, offset int) error
}

// Viewport is a headless Router and Scroller: it tracks the current path and
// scroll position and optionally narrates changes to a writer.
type Viewport struct {
	mu     sync.Mutex
	path   string
	offset int
	out    io.Writer
}

func NewViewport(out io.Writer) *Viewport {
	return &Viewport{path: "/", out: out}
}

func (v *Viewport) Push(ctx context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.path != path {
		v.offset = 0
	}
	v.path = path
	if v.out != nil {
		_, _ = fmt.Fprintf(v.out, "[navigate] %s\n", path)
	}
	return nil
}

func (v *Viewport) ScrollBy(ctx context.Context, offset int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset += offset
	if v.offset < 0 {
		v.offset = 0
	}
	if v.out != nil {
		_, _ = fmt.Fprintf(v.out, "[scroll] %+d -> %d\n", offset, v.offset)
	}
	return nil
}

func (v *Viewport) Path() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.path
}

func (v *Viewport) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}
