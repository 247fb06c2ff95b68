package testcases

import (
	"strings"
	"testing"

	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/types"
)

// TestNavigationAndScroll drives the page through voice commands.
func TestNavigationAndScroll(t *testing.T) {
	t.Parallel()
	h := NewHarness(t, classifier.NewLocalClassifier())

	resp := h.Say(t, "take me to your projects")
	if resp.Intent != types.IntentNavigate {
		t.Fatalf("expected NAVIGATE, got %s", resp.Intent)
	}
	if h.Viewport.Path() != "/projects" {
		t.Errorf("expected /projects, got %q", h.Viewport.Path())
	}

	h.Say(t, "scroll down")
	h.Say(t, "scroll down please")
	if h.Viewport.Offset() != 1000 {
		t.Errorf("expected offset 1000, got %d", h.Viewport.Offset())
	}
	h.Say(t, "scroll up")
	if h.Viewport.Offset() != 500 {
		t.Errorf("expected offset 500, got %d", h.Viewport.Offset())
	}

	h.Say(t, "go back home")
	if h.Viewport.Path() != "/" || h.Viewport.Offset() != 0 {
		t.Errorf("navigating home should reset the page, at %q offset %d", h.Viewport.Path(), h.Viewport.Offset())
	}

	h.Idle(t)
	log := h.Narrated.String()
	for _, want := range []string{"[navigate] /projects", "[scroll] +500 -> 500", "[scroll] -500 -> 500", "[navigate] /"} {
		if !strings.Contains(log, want) {
			t.Errorf("narration missing %q:\n%s", want, log)
		}
	}
}

// TestInfoLeavesPageAlone checks that an unrecognized request only talks.
func TestInfoLeavesPageAlone(t *testing.T) {
	t.Parallel()
	h := NewHarness(t, classifier.NewLocalClassifier())

	resp := h.Say(t, "what's the weather like")
	if resp.Intent != types.IntentInfo {
		t.Fatalf("expected INFO, got %s", resp.Intent)
	}
	if h.Viewport.Path() != "/" || h.Viewport.Offset() != 0 {
		t.Errorf("INFO must not move the page")
	}
	st := h.Idle(t)
	if st.ContactForm != (types.ContactForm{}) {
		t.Errorf("INFO must not touch the form, got %+v", st.ContactForm)
	}
}
