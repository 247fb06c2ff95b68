package agent

import (
	"context"

	"github.com/tbxark/voiceagent/types"
)

// Effect is a side effect requested by Reduce. Effects are data; the Engine
// and an EffectHandler carry them out.
type Effect interface {
	isEffect()
}

type StartCapture struct{}

// Persist merge-writes Memory into the persistent store.
type Persist struct {
	Memory types.Memory
}

type Classify struct {
	Turn    uint64
	Request types.ClassifyRequest
}

type Navigate struct {
	Target string
}

type Scroll struct {
	Direction string
}

type Speak struct {
	Text string
	Seq  uint64
}

type Submit struct {
	Form types.ContactForm
}

type ClearMemory struct{}

func (StartCapture) isEffect() {}
func (Persist) isEffect()      {}
func (Classify) isEffect()     {}
func (Navigate) isEffect()     {}
func (Scroll) isEffect()       {}
func (Speak) isEffect()        {}
func (Submit) isEffect()       {}
func (ClearMemory) isEffect()  {}

// Runtime is the engine surface available to an EffectHandler.
type Runtime interface {
	// Post queues an event for the engine loop. It never blocks after the
	// engine is closed.
	Post(ev Event)
	// Go runs fn on a goroutine the engine waits for on Close. Only call it
	// from Handle.
	Go(fn func())
}

type EffectHandler interface {
	Handle(ctx context.Context, rt Runtime, effect Effect)
}

type EffectHandlerFunc func(ctx context.Context, rt Runtime, effect Effect)

func (f EffectHandlerFunc) Handle(ctx context.Context, rt Runtime, effect Effect) {
	f(ctx, rt, effect)
}
