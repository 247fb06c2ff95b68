package dialogue

import (
	"github.com/tbxark/voiceagent/types"
)

// FormSpec describes which contact slots are required and how they are checked.
type FormSpec interface {
	MissingFacts(current types.ContactForm) []types.FieldInfo
	ValidateFacts(current types.ContactForm) []types.FieldInfo

	Summary(current types.ContactForm) string
}
