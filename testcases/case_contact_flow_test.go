package testcases

import (
	"errors"
	"strings"
	"testing"

	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/types"
)

// TestContactFlow fills the contact form slot by slot and sends it.
func TestContactFlow(t *testing.T) {
	t.Parallel()
	h := NewHarness(t, classifier.NewLocalClassifier())

	resp := h.Say(t, "I want to contact you")
	if resp.Intent != types.IntentClarify {
		t.Fatalf("expected CLARIFY, got %s", resp.Intent)
	}
	if resp.AgentSays != "May I have your name?" {
		t.Errorf("unexpected question %q", resp.AgentSays)
	}

	resp = h.Say(t, "Sam Lee")
	if resp.Intent != types.IntentUpdateForm {
		t.Fatalf("expected UPDATE_FORM, got %s", resp.Intent)
	}
	if got := h.Engine.Snapshot().ContactForm.Name; got != "Sam Lee" {
		t.Errorf("expected name 'Sam Lee', got %q", got)
	}
	if h.Viewport.Path() != "/contact" {
		t.Errorf("form updates should show the contact page, at %q", h.Viewport.Path())
	}

	h.Say(t, "it's sam@example.com")
	resp = h.Say(t, "my message is I'd love to work together")
	if !strings.Contains(resp.AgentSays, "Shall I send it?") {
		t.Errorf("expected a confirmation question, got %q", resp.AgentSays)
	}

	mem, ok := h.Store.Load(h.Context())
	if !ok || mem.FormState == nil {
		t.Fatalf("form state should be persisted before sending")
	}
	if mem.FormState.Email != "sam@example.com" {
		t.Errorf("persisted email %q", mem.FormState.Email)
	}

	resp = h.Say(t, "yes")
	if resp.Intent != types.IntentSubmitForm {
		t.Fatalf("expected SUBMIT_FORM, got %s", resp.Intent)
	}

	st := h.WaitFor(t, func(st agent.State) bool { return st.ContactForm.IsSubmitted })
	last := st.History[len(st.History)-1]
	if last.Content != agent.SubmitSuccessMessage {
		t.Errorf("expected success message last, got %q", last.Content)
	}

	sent := h.Inbox.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one submission, got %d", len(sent))
	}
	if sent[0].Name != "Sam Lee" || sent[0].Message != "I'd love to work together" {
		t.Errorf("unexpected submission %+v", sent[0])
	}
	if _, ok := h.Store.Load(h.Context()); ok {
		t.Error("memory should be cleared after a successful send")
	}

	h.Idle(t)
	spoken := h.Port.Spoken()
	if len(spoken) == 0 || spoken[len(spoken)-1] != agent.SubmitSuccessSpeech {
		t.Errorf("expected success speech last, got %v", spoken)
	}
}

// TestContactFlow_SubmitFailureKeepsForm checks that a failed send leaves
// the form filled so the user can retry.
func TestContactFlow_SubmitFailureKeepsForm(t *testing.T) {
	t.Parallel()
	inbox := &Inbox{Fail: errors.New("smtp down")}
	h := NewHarness(t, classifier.NewLocalClassifier(), WithInbox(inbox))

	h.Say(t, "my name is Ada, email ada@example.com, and my message is hello")
	h.Say(t, "send it")

	st := h.WaitFor(t, func(st agent.State) bool {
		n := len(st.History)
		return !st.ContactForm.IsSubmitting && n > 0 && st.History[n-1].Content == agent.SubmitFailureMessage
	})
	if st.ContactForm.IsSubmitted {
		t.Error("failed send must not mark the form submitted")
	}
	if st.ContactForm.Name != "Ada" || st.ContactForm.Email != "ada@example.com" {
		t.Errorf("form should be kept, got %+v", st.ContactForm)
	}
	if _, ok := h.Store.Load(h.Context()); !ok {
		t.Error("memory should survive a failed send")
	}
}

// TestContactFlow_NoSecondSubmission checks a confirmation after sending is
// not submitted again.
func TestContactFlow_NoSecondSubmission(t *testing.T) {
	t.Parallel()
	h := NewHarness(t, classifier.NewLocalClassifier())

	h.Say(t, "my name is Ada, email ada@example.com, and my message is hello")
	h.Say(t, "yes")
	h.WaitFor(t, func(st agent.State) bool { return st.ContactForm.IsSubmitted })

	resp := h.Say(t, "yes")
	if resp.Intent == types.IntentSubmitForm {
		t.Errorf("a sent form is not ready to send again")
	}
	h.Idle(t)
	if n := len(h.Inbox.Sent()); n != 1 {
		t.Errorf("expected exactly one submission, got %d", n)
	}
}
