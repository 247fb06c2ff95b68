package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Capture is one scripted StartCapture outcome.
type Capture struct {
	Text string
	Err  error
}

// ScriptedPort is a deterministic Port for tests. Captures are returned in
// order; every spoken text is recorded. SpeakDelay makes Speak block so
// cancellation can be observed.
type ScriptedPort struct {
	SpeakDelay time.Duration

	mu        sync.Mutex
	captures  []Capture
	spoken    []string
	cancelled []string
}

func NewScriptedPort(captures ...Capture) *ScriptedPort {
	return &ScriptedPort{captures: captures}
}

func (p *ScriptedPort) StartCapture(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.captures) == 0 {
		return "", errors.New("no speech detected")
	}
	next := p.captures[0]
	p.captures = p.captures[1:]
	return next.Text, next.Err
}

func (p *ScriptedPort) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		p.mu.Lock()
		p.cancelled = append(p.cancelled, text)
		p.mu.Unlock()
		return err
	}
	if p.SpeakDelay > 0 {
		timer := time.NewTimer(p.SpeakDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cancelled = append(p.cancelled, text)
			p.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.mu.Lock()
	p.spoken = append(p.spoken, text)
	p.mu.Unlock()
	return nil
}

func (p *ScriptedPort) Spoken() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spoken...)
}

func (p *ScriptedPort) Cancelled() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.cancelled...)
}
