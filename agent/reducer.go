package agent

import (
	"log/slog"
	"strings"

	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/patch"
	"github.com/tbxark/voiceagent/types"
)

const (
	SubmitSuccessMessage = "Message sent successfully!"
	SubmitSuccessSpeech  = "Your message has been sent successfully."
	SubmitFailureMessage = "Sorry, I couldn't send your message. Please try again."

	// ContactTarget is the navigation target shown while the form fills up.
	ContactTarget = "contact"
)

// Reduce is the pure transition function of the dialogue. The input state is
// never mutated; the returned effects must be carried out in order. Emitting
// a Speak marks the state as speaking until a SpeakingChanged event for the
// same Seq clears it.
func Reduce(state State, event Event) (State, []Effect) {
	next := state.Clone()
	switch ev := event.(type) {
	case ListenStart:
		if next.IsListening || next.IsProcessing {
			return state, nil
		}
		next.IsListening = true
		next.Error = ""
		return next, []Effect{StartCapture{}}

	case ListenEnd:
		next.IsListening = false
		return next, nil

	case ListenError:
		next.IsListening = false
		next.Error = ev.Message
		return next, nil

	case TranscriptReceived:
		return reduceTranscript(next, ev)

	case ClassificationReceived:
		if !next.IsProcessing || ev.Turn != next.Turn {
			slog.Debug("discarding stale classification", "turn", ev.Turn, "current", next.Turn, "processing", next.IsProcessing)
			return state, nil
		}
		return reconcile(next, ev.Response)

	case SubmissionSettled:
		return reduceSubmission(next, ev)

	case SpeakingChanged:
		if ev.Seq != 0 && ev.Seq != next.SpeechSeq {
			slog.Debug("discarding stale speech state", "seq", ev.Seq, "current", next.SpeechSeq)
			return state, nil
		}
		next.IsSpeaking = ev.Speaking
		return next, nil

	case ToggleOpen:
		next.IsOpen = !next.IsOpen
		return next, nil
	}
	return state, nil
}

func reduceTranscript(next State, ev TranscriptReceived) (State, []Effect) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		// Capture has ended either way.
		next.IsListening = false
		return next, nil
	}
	if next.IsProcessing {
		slog.Debug("rejecting utterance while a classification is in flight", "turn", next.Turn)
		return next, nil
	}
	next.Turn++
	next.IsListening = false
	next.IsProcessing = true
	next.IsOpen = true
	next.LastUserTranscript = text
	next.History = append(next.History, types.Message{Role: types.RoleUser, Content: text})

	form := next.ContactForm
	req := types.ClassifyRequest{
		Message:          text,
		CurrentFormState: &form,
	}
	if q, ok := next.PendingQuestion(); ok {
		req.LastQuestion = q
	}
	return next, []Effect{
		Persist{Memory: types.Memory{History: copyHistory(next.History)}},
		Classify{Turn: next.Turn, Request: req},
	}
}

// reconcile merges an accepted classification into the state. All
// persistence of the transition is coalesced into one Persist effect.
func reconcile(next State, resp *types.AgentResponse) (State, []Effect) {
	if resp == nil {
		resp = classifier.Fallback(classifier.ErrInvalidResponse)
	}
	resp = resp.Clone()

	next.IsProcessing = false
	next.LastAgentResponse = resp
	next.History = append(next.History, types.Message{Role: types.RoleAgent, Content: resp.AgentSays})

	persist := types.Memory{History: copyHistory(next.History)}
	var actions []Effect

	switch resp.Intent {
	case types.IntentClarify:
		persist.LastQuestion = types.Ptr(resp.AgentSays)

	case types.IntentUpdateForm:
		if next.ContactForm.IsSubmitted || resp.FormData.IsEmpty() {
			break
		}
		merged, err := patch.MergeFormData(next.ContactForm, resp.FormData)
		if err != nil {
			slog.Warn("merge form data failed", "error", err)
			break
		}
		next.ContactForm = merged
		form := merged
		persist.FormState = &form
		actions = append(actions, Navigate{Target: ContactTarget})

	case types.IntentSubmitForm:
		if next.ContactForm.IsSubmitted || next.ContactForm.IsSubmitting {
			break
		}
		next.ContactForm.IsSubmitting = true
		actions = append(actions, Submit{Form: next.ContactForm})

	case types.IntentNavigate:
		if resp.Target != "" {
			actions = append(actions, Navigate{Target: resp.Target})
		}

	case types.IntentScroll:
		actions = append(actions, Scroll{Direction: resp.Direction})
	}

	effects := append([]Effect{Persist{Memory: persist}}, actions...)
	if resp.AgentSays != "" {
		effects = append(effects, next.speak(resp.AgentSays))
	}
	return next, effects
}

func reduceSubmission(next State, ev SubmissionSettled) (State, []Effect) {
	if !next.ContactForm.IsSubmitting {
		return next, nil
	}
	next.ContactForm.IsSubmitting = false
	if ev.Err != nil {
		slog.Warn("contact form submission failed", "error", ev.Err)
		next.History = append(next.History, types.Message{Role: types.RoleAgent, Content: SubmitFailureMessage})
		say := next.speak(SubmitFailureMessage)
		return next, []Effect{say}
	}
	next.ContactForm.IsSubmitted = true
	next.History = append(next.History, types.Message{Role: types.RoleAgent, Content: SubmitSuccessMessage})
	say := next.speak(SubmitSuccessSpeech)
	return next, []Effect{
		say,
		ClearMemory{},
	}
}

func (s *State) speak(text string) Speak {
	s.SpeechSeq++
	s.IsSpeaking = true
	return Speak{Text: text, Seq: s.SpeechSeq}
}

func copyHistory(history []types.Message) []types.Message {
	return append([]types.Message(nil), history...)
}
