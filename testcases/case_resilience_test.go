package testcases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/types"
)

// TestClassifierDown checks that a broken backend yields a spoken apology
// and leaves the agent usable.
func TestClassifierDown(t *testing.T) {
	t.Parallel()
	var calls int
	var mu sync.Mutex
	flaky := classifier.ClassifierFunc(func(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return &types.AgentResponse{AgentSays: "Here are my projects.", Intent: types.IntentNavigate, Target: "projects"}, nil
	})
	h := NewHarness(t, flaky)

	resp := h.Say(t, "show me the projects")
	if resp.Intent != types.IntentInfo || resp.AgentSays != classifier.ConnectionApology {
		t.Fatalf("expected connection apology, got %+v", resp)
	}
	if h.Viewport.Path() != "/" {
		t.Errorf("apology must not navigate, at %q", h.Viewport.Path())
	}

	resp = h.Say(t, "show me the projects")
	if resp.Intent != types.IntentNavigate {
		t.Fatalf("expected NAVIGATE after recovery, got %s", resp.Intent)
	}
	if h.Viewport.Path() != "/projects" {
		t.Errorf("expected /projects, got %q", h.Viewport.Path())
	}
}

// TestFailbackToLocal checks that a failing remote classifier falls back to
// the offline one.
func TestFailbackToLocal(t *testing.T) {
	t.Parallel()
	remote := classifier.NewHTTPClassifier("http://127.0.0.1:1/api/agent")
	h := NewHarness(t, classifier.NewFailbackClassifier(remote, classifier.NewLocalClassifier()))

	resp := h.Say(t, "scroll down")
	if resp.Intent != types.IntentScroll {
		t.Fatalf("expected SCROLL from the local classifier, got %+v", resp)
	}
}

// TestMalformedReply checks that unusable model output becomes the confused
// apology.
func TestMalformedReply(t *testing.T) {
	t.Parallel()
	garbage := classifier.ClassifierFunc(func(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
		return classifier.Decode("```json\n{\"agent_says\": \"hi\", \"intent\": \"DANCE\"}\n```")
	})
	h := NewHarness(t, garbage)

	resp := h.Say(t, "hello")
	if resp.AgentSays != classifier.ConfusedApology {
		t.Errorf("expected confused apology, got %q", resp.AgentSays)
	}
}

// TestBusyWhileProcessing checks that an utterance arriving during a
// classification is dropped.
func TestBusyWhileProcessing(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	slow := classifier.ClassifierFunc(func(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &types.AgentResponse{AgentSays: "Hello!", Intent: types.IntentInfo}, nil
	})
	h := NewHarness(t, slow)

	done := make(chan *types.AgentResponse, 1)
	go func() {
		resp, _ := h.Engine.Ask(context.Background(), "hello")
		done <- resp
	}()
	h.WaitFor(t, func(st agent.State) bool { return st.IsProcessing })

	if _, err := h.Engine.Ask(context.Background(), "are you there?"); !errors.Is(err, agent.ErrEngineBusy) {
		t.Errorf("expected ErrEngineBusy, got %v", err)
	}
	h.Engine.SubmitText("are you there?")

	close(release)
	select {
	case resp := <-done:
		if resp == nil || resp.AgentSays != "Hello!" {
			t.Errorf("unexpected reply %+v", resp)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first utterance never answered")
	}

	st := h.Idle(t)
	for _, msg := range st.History {
		if msg.Content == "are you there?" {
			t.Error("utterance during processing must not enter history")
		}
	}
}
