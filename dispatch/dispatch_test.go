package dispatch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/capture"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/submit"
	"github.com/tbxark/voiceagent/types"
)

type fakeRuntime struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	events []agent.Event
}

func (r *fakeRuntime) Post(ev agent.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *fakeRuntime) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *fakeRuntime) wait() []agent.Event {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]agent.Event(nil), r.events...)
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		target string
		path   string
		ok     bool
	}{
		{"please take me home now", "/", true},
		{"HOME", "/", true},
		{"projects", "/projects", true},
		{"my project list", "/projects", true},
		{"contact page", "/contact", true},
		{"home or contact", "/", true},
		{"blog", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			path, ok := ResolveRoute(tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestScrollOffset(t *testing.T) {
	assert.Equal(t, -ScrollStep, ScrollOffset("up"))
	assert.Equal(t, -ScrollStep, ScrollOffset(" UP "))
	assert.Equal(t, ScrollStep, ScrollOffset("down"))
	assert.Equal(t, ScrollStep, ScrollOffset(""))
	assert.Equal(t, ScrollStep, ScrollOffset("sideways"))
}

func TestDispatcher_NavigateAndScroll(t *testing.T) {
	var out bytes.Buffer
	vp := NewViewport(&out)
	d := New(nil, vp, nil, nil)
	rt := &fakeRuntime{}
	ctx := context.Background()

	d.Handle(ctx, rt, agent.Navigate{Target: "your projects"})
	assert.Equal(t, "/projects", vp.Path())

	d.Handle(ctx, rt, agent.Navigate{Target: "the moon"})
	assert.Equal(t, "/projects", vp.Path())

	d.Handle(ctx, rt, agent.Scroll{Direction: "down"})
	d.Handle(ctx, rt, agent.Scroll{})
	assert.Equal(t, 2*ScrollStep, vp.Offset())
	d.Handle(ctx, rt, agent.Scroll{Direction: "up"})
	assert.Equal(t, ScrollStep, vp.Offset())

	d.Handle(ctx, rt, agent.Navigate{Target: "home"})
	assert.Equal(t, "/", vp.Path())
	assert.Equal(t, 0, vp.Offset())
	d.Handle(ctx, rt, agent.Scroll{Direction: "up"})
	assert.Equal(t, 0, vp.Offset())

	assert.Contains(t, out.String(), "[navigate] /projects")
	assert.Empty(t, rt.wait())
}

func TestDispatcher_PersistAndClear(t *testing.T) {
	store := memory.NewStore(memory.NewMemoryCache())
	d := New(nil, nil, nil, store)
	rt := &fakeRuntime{}
	ctx := context.Background()

	d.Handle(ctx, rt, agent.Persist{Memory: types.Memory{FormState: &types.ContactForm{Name: "Alex"}}})
	d.Handle(ctx, rt, agent.Persist{Memory: types.Memory{History: []types.Message{{Role: types.RoleUser, Content: "hi"}}}})
	mem, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "Alex", mem.FormState.Name)
	assert.Len(t, mem.History, 1)

	d.Handle(ctx, rt, agent.ClearMemory{})
	_, ok = store.Load(ctx)
	assert.False(t, ok)
}

func TestDispatcher_Speak(t *testing.T) {
	port := capture.NewScriptedPort()
	d := New(port, nil, nil, nil)
	rt := &fakeRuntime{}

	d.Handle(context.Background(), rt, agent.Speak{Text: "Hello", Seq: 1})
	assert.Equal(t, []agent.Event{agent.SpeakingChanged{Speaking: false, Seq: 1}}, rt.wait())
	assert.Equal(t, []string{"Hello"}, port.Spoken())
}

func TestDispatcher_SpeakLastWins(t *testing.T) {
	port := capture.NewScriptedPort()
	port.SpeakDelay = 50 * time.Millisecond
	d := New(port, nil, nil, nil)
	rt := &fakeRuntime{}

	d.Handle(context.Background(), rt, agent.Speak{Text: "first", Seq: 1})
	d.Handle(context.Background(), rt, agent.Speak{Text: "second", Seq: 2})
	assert.Equal(t, []agent.Event{agent.SpeakingChanged{Speaking: false, Seq: 2}}, rt.wait())
	assert.Equal(t, []string{"second"}, port.Spoken())
}

func TestDispatcher_SpeakWithoutPort(t *testing.T) {
	d := &Dispatcher{}
	rt := &fakeRuntime{}
	d.Handle(context.Background(), rt, agent.Speak{Text: "Hello", Seq: 3})
	assert.Equal(t, []agent.Event{agent.SpeakingChanged{Speaking: false, Seq: 3}}, rt.wait())
}

func TestDispatcher_Submit(t *testing.T) {
	var got types.ContactForm
	d := New(nil, nil, submit.SubmitterFunc(func(_ context.Context, form types.ContactForm) error {
		got = form
		return nil
	}), nil)
	rt := &fakeRuntime{}
	form := types.ContactForm{Name: "Alex", Email: "alex@example.com", Message: "hi", IsSubmitting: true}

	d.Handle(context.Background(), rt, agent.Submit{Form: form})
	assert.Equal(t, []agent.Event{agent.SubmissionSettled{}}, rt.wait())
	assert.Equal(t, form, got)

	boom := errors.New("boom")
	failing := New(nil, nil, submit.SubmitterFunc(func(context.Context, types.ContactForm) error { return boom }), nil)
	rt = &fakeRuntime{}
	failing.Handle(context.Background(), rt, agent.Submit{Form: form})
	assert.Equal(t, []agent.Event{agent.SubmissionSettled{Err: boom}}, rt.wait())

	rt = &fakeRuntime{}
	(&Dispatcher{}).Handle(context.Background(), rt, agent.Submit{Form: form})
	assert.Equal(t, []agent.Event{agent.SubmissionSettled{Err: ErrNoSubmitter}}, rt.wait())
}

func TestDispatcher_StartCapture(t *testing.T) {
	port := capture.NewScriptedPort(
		capture.Capture{Text: "show me your projects"},
		capture.Capture{Err: errors.New("not-allowed")},
	)
	d := New(port, nil, nil, nil)

	rt := &fakeRuntime{}
	d.Handle(context.Background(), rt, agent.StartCapture{})
	assert.Equal(t, []agent.Event{agent.TranscriptReceived{Text: "show me your projects"}}, rt.wait())

	rt = &fakeRuntime{}
	d.Handle(context.Background(), rt, agent.StartCapture{})
	assert.Equal(t, []agent.Event{agent.ListenError{Message: "not-allowed"}}, rt.wait())

	rt = &fakeRuntime{}
	(&Dispatcher{}).Handle(context.Background(), rt, agent.StartCapture{})
	assert.Equal(t, []agent.Event{agent.ListenError{Message: capture.ErrUnsupported.Error()}}, rt.wait())
}
