package dialogue

import (
	"fmt"

	"github.com/tbxark/voiceagent/types"
)

// LocalGenerator phrases the next contact-form question without a model.
type LocalGenerator struct {
	Spec FormSpec
}

func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{Spec: ContactSpec{}}
}

// NextQuestion asks for the first invalid or missing slot, or for confirmation
// once every slot is filled.
func (g *LocalGenerator) NextQuestion(form types.ContactForm) string {
	if form.IsSubmitted {
		return "Your message has already been sent."
	}
	if form.IsSubmitting {
		return "I'm sending your message right now."
	}
	for _, err := range g.Spec.ValidateFacts(form) {
		if err.Description != "" {
			return err.Description
		}
		return fmt.Sprintf("Please check your %s.", err.DisplayName)
	}
	for _, field := range g.Spec.MissingFacts(form) {
		if field.Description != "" {
			return field.Description
		}
		return fmt.Sprintf("Please tell me your %s.", field.DisplayName)
	}
	return fmt.Sprintf("I have %s. Shall I send it?", g.Spec.Summary(form))
}
