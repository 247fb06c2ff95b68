package capture

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned by ports that lack a capability in the
	// current environment.
	ErrUnsupported = errors.New("capture: not supported in this environment")
	// ErrSuperseded is returned for an utterance cut off by a newer one.
	ErrSuperseded = errors.New("capture: utterance superseded")
)

// Port abstracts the voice devices. StartCapture yields one final transcript;
// a failure is reported as an error whose text is shown to the user.
type Port interface {
	StartCapture(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}
