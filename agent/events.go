package agent

import (
	"github.com/tbxark/voiceagent/types"
)

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

type ListenStart struct{}

type ListenEnd struct{}

type ListenError struct {
	Message string
}

// TranscriptReceived carries one final utterance, spoken or typed.
type TranscriptReceived struct {
	Text string
}

type ClassificationReceived struct {
	Turn     uint64
	Response *types.AgentResponse
}

// SubmissionSettled reports the outcome of a Submit effect. A nil Err means
// the message was sent.
type SubmissionSettled struct {
	Err error
}

// SpeakingChanged reports speech output state. Seq names the Speak effect it
// belongs to; zero applies unconditionally.
type SpeakingChanged struct {
	Speaking bool
	Seq      uint64
}

type ToggleOpen struct{}

func (ListenStart) isEvent()            {}
func (ListenEnd) isEvent()              {}
func (ListenError) isEvent()            {}
func (TranscriptReceived) isEvent()     {}
func (ClassificationReceived) isEvent() {}
func (SubmissionSettled) isEvent()      {}
func (SpeakingChanged) isEvent()        {}
func (ToggleOpen) isEvent()             {}
