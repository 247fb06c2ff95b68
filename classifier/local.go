package classifier

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tbxark/voiceagent/dialogue"
	"github.com/tbxark/voiceagent/patch"
	"github.com/tbxark/voiceagent/types"
)

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	namePattern    = regexp.MustCompile(`(?i:my name is|call me|name's)\s+([A-Za-z][A-Za-z'\-]*(?:\s+[A-Z][A-Za-z'\-]*)?)`)
	messagePattern = regexp.MustCompile(`(?i:message is|tell (?:him|her|them)|say that)\s*:?\s+(.+)`)
)

// LocalClassifier recognizes navigation, scrolling and contact-form turns by
// keyword. It needs no network and is meant as the last classifier in a
// FailbackClassifier chain.
type LocalClassifier struct {
	Generator       *dialogue.LocalGenerator
	ConfirmKeywords []string
	NavigateVerbs   []string
	ContactKeywords []string
}

func NewLocalClassifier() *LocalClassifier {
	return &LocalClassifier{
		Generator:       dialogue.NewLocalGenerator(),
		ConfirmKeywords: []string{"yes", "yes please", "yep", "sure", "ok", "okay", "send", "send it", "confirm", "submit"},
		NavigateVerbs:   []string{"go to", "go back", "take me", "open", "show me", "navigate"},
		ContactKeywords: []string{"contact", "hire", "send a message", "reach", "get in touch"},
	}
}

func (c *LocalClassifier) Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
	if req == nil {
		return nil, errors.New("classify request is nil")
	}
	text := strings.TrimSpace(req.Message)
	normalized := strings.ToLower(strings.Trim(text, " .!?"))
	var form types.ContactForm
	if req.CurrentFormState != nil {
		form = *req.CurrentFormState
	}

	if c.readyToSend(form) {
		for _, keyword := range c.ConfirmKeywords {
			if normalized == keyword {
				return &types.AgentResponse{AgentSays: "Sending your message now.", Intent: types.IntentSubmitForm}, nil
			}
		}
	}

	if strings.Contains(normalized, "scroll") {
		direction := "down"
		if strings.Contains(normalized, "up") {
			direction = "up"
		}
		return &types.AgentResponse{AgentSays: fmt.Sprintf("Scrolling %s.", direction), Intent: types.IntentScroll, Direction: direction}, nil
	}

	if target := c.navigationTarget(normalized); target != "" {
		return &types.AgentResponse{
			AgentSays: fmt.Sprintf("Taking you to the %s page.", target),
			Intent:    types.IntentNavigate,
			Target:    target,
		}, nil
	}

	if data := c.extract(text, req.LastQuestion); !data.IsEmpty() {
		merged, err := patch.MergeFormData(form, data)
		if err != nil {
			merged = form
		}
		return &types.AgentResponse{
			AgentSays: "Got it. " + c.Generator.NextQuestion(merged),
			Intent:    types.IntentUpdateForm,
			FormData:  data,
		}, nil
	}

	for _, keyword := range c.ContactKeywords {
		if strings.Contains(normalized, keyword) {
			return &types.AgentResponse{AgentSays: c.Generator.NextQuestion(form), Intent: types.IntentClarify}, nil
		}
	}

	return &types.AgentResponse{
		AgentSays: "I can show you the home, projects or contact page, scroll, or help you send a message.",
		Intent:    types.IntentInfo,
	}, nil
}

func (c *LocalClassifier) readyToSend(form types.ContactForm) bool {
	if form.IsSubmitted || form.IsSubmitting {
		return false
	}
	spec := c.Generator.Spec
	return len(spec.MissingFacts(form)) == 0 && len(spec.ValidateFacts(form)) == 0
}

func (c *LocalClassifier) navigationTarget(normalized string) string {
	hasVerb := false
	for _, verb := range c.NavigateVerbs {
		if strings.Contains(normalized, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return ""
	}
	switch {
	case strings.Contains(normalized, "home"):
		return "home"
	case strings.Contains(normalized, "project"):
		return "projects"
	case strings.Contains(normalized, "contact"):
		return "contact"
	}
	return ""
}

// extract pulls slot values out of the utterance. A bare answer to a pending
// slot question fills that slot.
func (c *LocalClassifier) extract(text, lastQuestion string) *types.FormData {
	data := &types.FormData{}
	if m := emailPattern.FindString(text); m != "" {
		data.Email = types.Ptr(m)
	}
	if m := namePattern.FindStringSubmatch(text); m != nil {
		data.Name = types.Ptr(strings.TrimSpace(m[1]))
	}
	if m := messagePattern.FindStringSubmatch(text); m != nil {
		data.Message = types.Ptr(strings.TrimSpace(m[1]))
	}
	if !data.IsEmpty() || lastQuestion == "" {
		return data
	}
	answer := strings.TrimSpace(strings.TrimRight(text, " .!"))
	if answer == "" {
		return data
	}
	for _, field := range c.Generator.Spec.MissingFacts(types.ContactForm{}) {
		if field.Description != lastQuestion {
			continue
		}
		switch field.JSONPointer {
		case "/name":
			data.Name = types.Ptr(answer)
		case "/message":
			data.Message = types.Ptr(answer)
		}
	}
	return data
}

// FailbackClassifier returns the first successful classification.
type FailbackClassifier struct {
	classifiers []Classifier
}

func NewFailbackClassifier(classifiers ...Classifier) *FailbackClassifier {
	return &FailbackClassifier{classifiers: classifiers}
}

func (c *FailbackClassifier) Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
	lastErr := errors.New("no classifiers configured")
	for _, classifier := range c.classifiers {
		resp, err := classifier.Classify(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
