package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// StdioPort reads utterances as lines from a reader and "speaks" by writing
// to a writer.
type StdioPort struct {
	Prompt string

	mu      sync.Mutex
	scanner *bufio.Scanner
	out     io.Writer
}

func NewStdioPort(in io.Reader, out io.Writer) *StdioPort {
	return &StdioPort{
		Prompt:  "> ",
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// StartCapture blocks until a line is read. Cancelling ctx abandons the
// pending read; the line, when it arrives, is dropped.
func (p *StdioPort) StartCapture(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.Prompt != "" && p.out != nil {
			_, _ = fmt.Fprint(p.out, p.Prompt)
		}
		if p.scanner.Scan() {
			ch <- result{line: strings.TrimSpace(p.scanner.Text())}
			return
		}
		err := p.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- result{err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func (p *StdioPort) Speak(ctx context.Context, text string) error {
	if p.out == nil {
		return ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.out, "assistant: %s\n", text)
	return err
}
