package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tbxark/voiceagent/types"
)

func TestNextQuestionAsksForFirstMissingSlot(t *testing.T) {
	t.Parallel()
	g := NewLocalGenerator()

	assert.Equal(t, "May I have your name?", g.NextQuestion(types.ContactForm{}))
	assert.Equal(t, "What's your email address?", g.NextQuestion(types.ContactForm{Name: "Alex"}))
	assert.Equal(t, "What message would you like to send?", g.NextQuestion(types.ContactForm{Name: "Alex", Email: "alex@example.com"}))
}

func TestNextQuestionReportsInvalidEmailFirst(t *testing.T) {
	t.Parallel()
	g := NewLocalGenerator()

	q := g.NextQuestion(types.ContactForm{Email: "not-an-address"})
	assert.Contains(t, q, "email address doesn't look right")
}

func TestNextQuestionAsksForConfirmationWhenComplete(t *testing.T) {
	t.Parallel()
	g := NewLocalGenerator()

	q := g.NextQuestion(types.ContactForm{Name: "Alex", Email: "alex@example.com", Message: "Hi"})
	assert.Contains(t, q, "Shall I send it?")
	assert.Contains(t, q, "alex@example.com")
}

func TestContactSpecMissingFacts(t *testing.T) {
	t.Parallel()

	missing := ContactSpec{}.MissingFacts(types.ContactForm{Name: "  "})
	pointers := make([]string, 0, len(missing))
	for _, m := range missing {
		pointers = append(pointers, m.JSONPointer)
	}
	assert.Equal(t, []string{"/name", "/email", "/message"}, pointers)
}
