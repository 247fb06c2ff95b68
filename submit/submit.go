package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tbxark/voiceagent/dialogue"
	"github.com/tbxark/voiceagent/types"
)

var ErrIncompleteForm = errors.New("contact form is incomplete")

// Submitter delivers a contact form.
type Submitter interface {
	Submit(ctx context.Context, form types.ContactForm) error
}

type SubmitterFunc func(ctx context.Context, form types.ContactForm) error

func (f SubmitterFunc) Submit(ctx context.Context, form types.ContactForm) error {
	return f(ctx, form)
}

// Validate rejects forms with missing or invalid slots.
func Validate(form types.ContactForm) error {
	spec := dialogue.ContactSpec{}
	var problems []string
	for _, f := range spec.MissingFacts(form) {
		problems = append(problems, "missing "+f.DisplayName)
	}
	for _, f := range spec.ValidateFacts(form) {
		problems = append(problems, "invalid "+f.DisplayName)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteForm, strings.Join(problems, ", "))
	}
	return nil
}

// LogSubmitter only logs the message.
type LogSubmitter struct {
	Logger *slog.Logger
}

func (s LogSubmitter) Submit(ctx context.Context, form types.ContactForm) error {
	if err := Validate(form); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "contact message submitted", "name", form.Name, "email", form.Email, "length", len(form.Message))
	return nil
}

// DelayedSubmitter waits before delegating, simulating a slow send.
type DelayedSubmitter struct {
	Delay time.Duration
	Next  Submitter
}

func (s DelayedSubmitter) Submit(ctx context.Context, form types.ContactForm) error {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	if s.Next == nil {
		return nil
	}
	return s.Next.Submit(ctx, form)
}
