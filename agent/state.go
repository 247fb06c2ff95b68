package agent

import (
	"github.com/tbxark/voiceagent/types"
)

// Greeting seeds the history of a session without persisted memory.
const Greeting = "Hi! I'm your AI assistant. How can I help you navigate this portfolio?"

// State is the authoritative dialogue state. It is owned by the Engine loop;
// everything else sees copies.
type State struct {
	IsListening  bool `json:"isListening"`
	IsProcessing bool `json:"isProcessing"`
	IsSpeaking   bool `json:"isSpeaking"`

	History            []types.Message      `json:"history"`
	LastUserTranscript string               `json:"lastUserTranscript,omitempty"`
	LastAgentResponse  *types.AgentResponse `json:"lastAgentResponse,omitempty"`
	Error              string               `json:"error,omitempty"`

	ContactForm types.ContactForm `json:"contactForm"`
	IsOpen      bool              `json:"isOpen"`

	// Turn is the id of the latest accepted utterance. Classification
	// results for any other turn are stale.
	Turn uint64 `json:"turn"`
	// SpeechSeq numbers Speak effects. Only the completion of the latest
	// utterance clears IsSpeaking.
	SpeechSeq uint64 `json:"speechSeq"`
}

// NewState builds the startup state. Persisted form state and history replace
// the greeting-only default, and a persisted last question becomes a CLARIFY
// response so the next turn picks it up as context.
func NewState(mem *types.Memory) State {
	st := State{
		History: []types.Message{{Role: types.RoleAgent, Content: Greeting}},
	}
	if mem == nil {
		return st
	}
	if mem.FormState != nil {
		st.ContactForm = *mem.FormState
		// A send interrupted by a restart is not in flight anymore.
		st.ContactForm.IsSubmitting = false
	}
	if len(mem.History) > 0 {
		st.History = append([]types.Message(nil), mem.History...)
	}
	if mem.LastQuestion != nil && *mem.LastQuestion != "" {
		st.LastAgentResponse = &types.AgentResponse{
			AgentSays: *mem.LastQuestion,
			Intent:    types.IntentClarify,
		}
	}
	return st
}

func (s State) Clone() State {
	out := s
	out.History = append([]types.Message(nil), s.History...)
	out.LastAgentResponse = s.LastAgentResponse.Clone()
	return out
}

// PendingQuestion returns the clarification question still awaiting an
// answer, if the last accepted response asked one.
func (s State) PendingQuestion() (string, bool) {
	if s.LastAgentResponse == nil || s.LastAgentResponse.Intent != types.IntentClarify {
		return "", false
	}
	return s.LastAgentResponse.AgentSays, s.LastAgentResponse.AgentSays != ""
}
