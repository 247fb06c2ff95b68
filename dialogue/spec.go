package dialogue

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/tbxark/voiceagent/types"
)

var _ FormSpec = ContactSpec{}

type ContactSpec struct{}

func (ContactSpec) MissingFacts(current types.ContactForm) []types.FieldInfo {
	var missing []types.FieldInfo
	if strings.TrimSpace(current.Name) == "" {
		missing = append(missing, types.FieldInfo{
			JSONPointer: "/name",
			DisplayName: "name",
			Description: "May I have your name?",
			Required:    true,
		})
	}
	if strings.TrimSpace(current.Email) == "" {
		missing = append(missing, types.FieldInfo{
			JSONPointer: "/email",
			DisplayName: "email",
			Description: "What's your email address?",
			Required:    true,
		})
	}
	if strings.TrimSpace(current.Message) == "" {
		missing = append(missing, types.FieldInfo{
			JSONPointer: "/message",
			DisplayName: "message",
			Description: "What message would you like to send?",
			Required:    true,
		})
	}
	return missing
}

func (ContactSpec) ValidateFacts(current types.ContactForm) []types.FieldInfo {
	var errs []types.FieldInfo
	if current.Email != "" {
		if _, err := mail.ParseAddress(current.Email); err != nil {
			errs = append(errs, types.FieldInfo{
				JSONPointer: "/email",
				DisplayName: "email",
				Description: "That email address doesn't look right, could you spell it again?",
			})
		}
	}
	return errs
}

func (ContactSpec) Summary(current types.ContactForm) string {
	return fmt.Sprintf("Name: %s, Email: %s, Message: %s", current.Name, current.Email, current.Message)
}
