package types

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Intent is the action kind chosen by the classifier for one utterance.
type Intent string

const (
	IntentNavigate   Intent = "NAVIGATE"
	IntentScroll     Intent = "SCROLL"
	IntentInfo       Intent = "INFO"
	IntentClarify    Intent = "CLARIFY"
	IntentUpdateForm Intent = "UPDATE_FORM"
	IntentSubmitForm Intent = "SUBMIT_FORM"
)

var AllIntents = []Intent{
	IntentNavigate,
	IntentScroll,
	IntentInfo,
	IntentClarify,
	IntentUpdateForm,
	IntentSubmitForm,
}

func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// ContactForm is the slot state of the contact dialogue. Empty strings mean
// the slot has not been collected yet.
type ContactForm struct {
	Name         string `json:"name" jsonschema:"description=Full name of the person reaching out"`
	Email        string `json:"email" jsonschema:"description=E-mail address used to reply"`
	Message      string `json:"message" jsonschema:"description=The message body to send"`
	IsConfirmed  bool   `json:"isConfirmed" jsonschema:"description=User explicitly agreed to send the message"`
	IsSubmitting bool   `json:"isSubmitting" jsonschema:"description=Submission is in flight"`
	IsSubmitted  bool   `json:"isSubmitted" jsonschema:"description=Submission finished successfully"`
}

// FormData is a partial ContactForm extracted from one utterance. Nil fields
// were not mentioned.
type FormData struct {
	Name        *string `json:"name,omitempty" jsonschema:"description=Sender name if the user provided it"`
	Email       *string `json:"email,omitempty" jsonschema:"description=Sender e-mail if the user provided it"`
	Message     *string `json:"message,omitempty" jsonschema:"description=Message body if the user provided it"`
	IsConfirmed *bool   `json:"isConfirmed,omitempty" jsonschema:"description=True when the user confirmed sending"`
}

func (d *FormData) IsEmpty() bool {
	return d == nil || (d.Name == nil && d.Email == nil && d.Message == nil && d.IsConfirmed == nil)
}

// AgentResponse is the structured classification of a user utterance.
type AgentResponse struct {
	AgentSays string    `json:"agent_says" jsonschema:"required,description=What the assistant says back to the user"`
	Intent    Intent    `json:"intent" jsonschema:"required,enum=NAVIGATE,enum=SCROLL,enum=INFO,enum=CLARIFY,enum=UPDATE_FORM,enum=SUBMIT_FORM,description=The action to perform"`
	Target    string    `json:"target,omitempty" jsonschema:"description=Destination page for NAVIGATE (home; projects; contact)"`
	Direction string    `json:"direction,omitempty" jsonschema:"enum=up,enum=down,description=Scroll direction for SCROLL"`
	FormData  *FormData `json:"formData,omitempty" jsonschema:"description=Extracted contact form fields for UPDATE_FORM"`
}

func (r *AgentResponse) Clone() *AgentResponse {
	if r == nil {
		return nil
	}
	out := *r
	if r.FormData != nil {
		fd := *r.FormData
		out.FormData = &fd
	}
	return &out
}

// ClassifyRequest is the context sent to the classifier for one turn.
type ClassifyRequest struct {
	Message          string       `json:"message"`
	LastQuestion     string       `json:"lastQuestion,omitempty"`
	CurrentFormState *ContactForm `json:"currentFormState,omitempty"`
}

// Memory is the durable subset of the dialogue state. Nil fields are absent
// from the stored record.
type Memory struct {
	LastQuestion *string      `json:"lastQuestion,omitempty"`
	FormState    *ContactForm `json:"formState,omitempty"`
	History      []Message    `json:"history,omitempty"`
}

func (m *Memory) IsEmpty() bool {
	return m == nil || (m.LastQuestion == nil && m.FormState == nil && m.History == nil)
}

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

func Ptr[T any](v T) *T {
	return &v
}
