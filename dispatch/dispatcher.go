package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/capture"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/submit"
)

var ErrNoSubmitter = errors.New("no submitter configured")

// Dispatcher carries out the effects emitted by the dialogue reducer. It
// holds no dialogue state; results of asynchronous work are posted back to
// the engine as events.
type Dispatcher struct {
	Router    Router
	Scroller  Scroller
	Port      capture.Port
	Speaker   *capture.Speaker
	Submitter submit.Submitter
	Memory    *memory.Store
}

var _ agent.EffectHandler = (*Dispatcher)(nil)

func New(port capture.Port, viewport *Viewport, submitter submit.Submitter, store *memory.Store) *Dispatcher {
	d := &Dispatcher{
		Port:      port,
		Speaker:   capture.NewSpeaker(port),
		Submitter: submitter,
		Memory:    store,
	}
	if viewport != nil {
		d.Router = viewport
		d.Scroller = viewport
	}
	return d
}

func (d *Dispatcher) Handle(ctx context.Context, rt agent.Runtime, effect agent.Effect) {
	switch eff := effect.(type) {
	case agent.Persist:
		d.Memory.Save(ctx, &eff.Memory)
	case agent.ClearMemory:
		d.Memory.Clear(ctx)
	case agent.Navigate:
		d.navigate(ctx, eff.Target)
	case agent.Scroll:
		d.scroll(ctx, eff.Direction)
	case agent.Speak:
		d.speak(ctx, rt, eff)
	case agent.Submit:
		d.submit(ctx, rt, eff)
	case agent.StartCapture:
		d.capture(ctx, rt)
	default:
		slog.Debug("unhandled effect", "effect", effect)
	}
}

func (d *Dispatcher) navigate(ctx context.Context, target string) {
	path, ok := ResolveRoute(target)
	if !ok {
		slog.Debug("navigation target not recognized", "target", target)
		return
	}
	if d.Router == nil {
		return
	}
	if err := d.Router.Push(ctx, path); err != nil {
		slog.Warn("navigation failed", "path", path, "error", err)
	}
}

func (d *Dispatcher) scroll(ctx context.Context, direction string) {
	if d.Scroller == nil {
		return
	}
	if err := d.Scroller.ScrollBy(ctx, ScrollOffset(direction)); err != nil {
		slog.Warn("scroll failed", "direction", direction, "error", err)
	}
}

func (d *Dispatcher) speak(ctx context.Context, rt agent.Runtime, eff agent.Speak) {
	done := agent.SpeakingChanged{Speaking: false, Seq: eff.Seq}
	if d.Speaker == nil {
		rt.Go(func() { rt.Post(done) })
		return
	}
	// Start runs here so utterances are ordered by dispatch, not by goroutine
	// scheduling.
	run := d.Speaker.Start(ctx, eff.Text)
	rt.Go(func() {
		err := run()
		if errors.Is(err, capture.ErrSuperseded) {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("speech output failed", "error", err)
		}
		rt.Post(done)
	})
}

func (d *Dispatcher) submit(ctx context.Context, rt agent.Runtime, eff agent.Submit) {
	submitter := d.Submitter
	rt.Go(func() {
		err := ErrNoSubmitter
		if submitter != nil {
			err = submitter.Submit(ctx, eff.Form)
		}
		rt.Post(agent.SubmissionSettled{Err: err})
	})
}

func (d *Dispatcher) capture(ctx context.Context, rt agent.Runtime) {
	if d.Port == nil {
		rt.Go(func() { rt.Post(agent.ListenError{Message: capture.ErrUnsupported.Error()}) })
		return
	}
	port := d.Port
	rt.Go(func() {
		text, err := port.StartCapture(ctx)
		if err != nil {
			rt.Post(agent.ListenError{Message: err.Error()})
			return
		}
		// The transcript ends listening. One terminal event per capture.
		rt.Post(agent.TranscriptReceived{Text: text})
	})
}
