package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cloudwego/eino/adk"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/types"
)

var (
	ErrEngineClosed   = errors.New("engine closed")
	ErrEngineBusy     = errors.New("engine is still processing the previous utterance")
	ErrEmptyUtterance = errors.New("empty utterance")
	ErrCaptureFailed  = errors.New("capture failed")
)

type Config struct {
	Classifier *classifier.Client
	Memory     *memory.Store
	Effects    EffectHandler
	// EventBuffer is the capacity of the event queue. Defaults to 64.
	EventBuffer int
}

// Engine owns the dialogue State and applies events to it on a single loop
// goroutine. Classification runs on helper goroutines whose results come
// back as ClassificationReceived events tagged with their turn.
type Engine struct {
	classifier *classifier.Client
	memory     *memory.Store
	effects    EffectHandler

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once

	mu          sync.RWMutex
	state       State
	subscribers map[int]*adk.AsyncGenerator[State]
	nextSubID   int
	closed      bool
}

// NewEngine seeds the state from persisted memory. ctx carries the session
// key and bounds every classification the engine issues.
func NewEngine(ctx context.Context, cfg Config) *Engine {
	buffer := cfg.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}
	mem, _ := cfg.Memory.Load(ctx)
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		classifier:  cfg.Classifier,
		memory:      cfg.Memory,
		effects:     cfg.Effects,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan Event, buffer),
		done:        make(chan struct{}),
		state:       NewState(mem),
		subscribers: map[int]*adk.AsyncGenerator[State]{},
	}
}

// Start launches the event loop. Calling it more than once is a no-op.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.wg.Add(1)
		go e.loop()
	})
}

// Run starts the loop and blocks until ctx is done or the engine is closed.
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	select {
	case <-ctx.Done():
		e.Close()
		return ctx.Err()
	case <-e.done:
		return nil
	}
}

// Close stops the loop, waits for helper goroutines and ends every
// subscription.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.cancel()
		e.wg.Wait()

		e.mu.Lock()
		e.closed = true
		for id, gen := range e.subscribers {
			gen.Close()
			delete(e.subscribers, id)
		}
		e.mu.Unlock()
	})
}

func (e *Engine) loop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case ev := <-e.events:
			e.apply(ev)
		}
	}
}

func (e *Engine) apply(ev Event) {
	e.mu.Lock()
	next, effects := Reduce(e.state, ev)
	e.state = next
	e.mu.Unlock()

	for _, effect := range effects {
		if c, ok := effect.(Classify); ok {
			e.classify(c)
			continue
		}
		if e.effects == nil {
			slog.Debug("no effect handler, dropping effect", "effect", effect)
			continue
		}
		e.effects.Handle(e.ctx, e, effect)
	}

	// Subscribers observe a state only after its effects were dispatched.
	e.mu.Lock()
	for _, gen := range e.subscribers {
		gen.Send(next.Clone())
	}
	e.mu.Unlock()
}

func (e *Engine) classify(c Classify) {
	req := c.Request
	if req.LastQuestion == "" {
		if mem, ok := e.memory.Load(e.ctx); ok && mem.LastQuestion != nil {
			req.LastQuestion = *mem.LastQuestion
		}
	}
	e.Go(func() {
		resp := e.classifier.Classify(e.ctx, &req)
		e.Post(ClassificationReceived{Turn: c.Turn, Response: resp})
	})
}

func (e *Engine) Post(ev Event) {
	select {
	case <-e.done:
	case e.events <- ev:
	}
}

func (e *Engine) Go(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

func (e *Engine) StartListening() {
	e.Post(ListenStart{})
}

// SubmitText feeds a typed utterance as if it had been captured.
func (e *Engine) SubmitText(text string) {
	e.Post(TranscriptReceived{Text: text})
}

func (e *Engine) ToggleOpen() {
	e.Post(ToggleOpen{})
}

func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Subscribe returns an iterator that yields the current state followed by
// every state after an event is applied. The returned func ends the
// subscription.
func (e *Engine) Subscribe() (*adk.AsyncIterator[State], func()) {
	iter, gen := adk.NewAsyncIteratorPair[State]()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		gen.Close()
		return iter, func() {}
	}
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = gen
	gen.Send(e.state.Clone())
	e.mu.Unlock()

	var once sync.Once
	return iter, func() {
		once.Do(func() {
			e.mu.Lock()
			if g, ok := e.subscribers[id]; ok {
				g.Close()
				delete(e.subscribers, id)
			}
			e.mu.Unlock()
		})
	}
}

// Ask submits text and waits for the agent's reply to that utterance.
func (e *Engine) Ask(ctx context.Context, text string) (*types.AgentResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyUtterance
	}
	iter, cancel := e.Subscribe()
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	first, ok := iter.Next()
	if !ok {
		return nil, ErrEngineClosed
	}
	if first.IsProcessing {
		return nil, ErrEngineBusy
	}
	e.SubmitText(text)
	for {
		st, ok := iter.Next()
		if !ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, ErrEngineClosed
		}
		if st.Turn > first.Turn && !st.IsProcessing && st.LastAgentResponse != nil {
			return st.LastAgentResponse, nil
		}
	}
}

func (s State) idle() bool {
	return !s.IsListening && !s.IsProcessing && !s.IsSpeaking && !s.ContactForm.IsSubmitting
}

// Converse keeps the conversation hands-free: every time the dialogue goes
// idle a new capture is started. It returns when a capture fails, ctx is
// done or the engine closes.
func (e *Engine) Converse(ctx context.Context) error {
	iter, cancel := e.Subscribe()
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	pending, armed := false, false
	for {
		st, ok := iter.Next()
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrEngineClosed
		}
		switch {
		case st.IsListening:
			pending, armed = false, true
			continue
		case st.IsProcessing:
			pending = false
		}
		if armed && st.Error != "" {
			return fmt.Errorf("%w: %s", ErrCaptureFailed, st.Error)
		}
		if st.idle() && !pending {
			pending = true
			e.StartListening()
		}
	}
}
