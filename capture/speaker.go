package capture

import (
	"context"
	"errors"
	"sync"
)

// Speaker serializes speech output with last-speak-wins semantics: starting an
// utterance cancels the one in flight. There is no queue.
type Speaker struct {
	port Port

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewSpeaker(port Port) *Speaker {
	return &Speaker{port: port}
}

// Start cancels the utterance in flight and prepares text as the current
// one. The returned func speaks it and blocks until done. It returns
// ErrSuperseded when a later Start cut it off and nil when the port cannot
// speak at all.
func (s *Speaker) Start(ctx context.Context, text string) func() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	uctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	return func() error {
		defer cancel()
		var err error
		if s.port == nil {
			err = ErrUnsupported
		} else {
			err = s.port.Speak(uctx, text)
		}

		s.mu.Lock()
		latest := s.seq == id
		if latest {
			s.cancel = nil
		}
		s.mu.Unlock()

		if !latest {
			return ErrSuperseded
		}
		if errors.Is(err, ErrUnsupported) {
			return nil
		}
		return err
	}
}

// Stop cancels whatever is being spoken.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
