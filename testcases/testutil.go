package testcases

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/voiceagent/agent"
	"github.com/tbxark/voiceagent/capture"
	"github.com/tbxark/voiceagent/classifier"
	"github.com/tbxark/voiceagent/config"
	"github.com/tbxark/voiceagent/dispatch"
	"github.com/tbxark/voiceagent/memory"
	"github.com/tbxark/voiceagent/types"
)

// Inbox records submitted forms. Fail makes the next submissions error.
type Inbox struct {
	mu   sync.Mutex
	sent []types.ContactForm
	Fail error
}

func (i *Inbox) Submit(ctx context.Context, form types.ContactForm) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Fail != nil {
		return i.Fail
	}
	i.sent = append(i.sent, form)
	return nil
}

func (i *Inbox) Sent() []types.ContactForm {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]types.ContactForm(nil), i.sent...)
}

// Harness is a complete assistant wired to in-memory doubles.
type Harness struct {
	Engine   *agent.Engine
	Port     *capture.ScriptedPort
	Viewport *dispatch.Viewport
	Inbox    *Inbox
	Store    *memory.Store
	Cache    *memory.MemoryCache
	Narrated *bytes.Buffer
	ctx      context.Context
}

type harnessOptions struct {
	cache    *memory.MemoryCache
	session  string
	captures []capture.Capture
	inbox    *Inbox
}

type HarnessOption func(*harnessOptions)

// WithCache shares persisted memory between harnesses.
func WithCache(cache *memory.MemoryCache) HarnessOption {
	return func(o *harnessOptions) {
		o.cache = cache
	}
}

func WithSession(key string) HarnessOption {
	return func(o *harnessOptions) {
		o.session = key
	}
}

func WithCaptures(captures ...capture.Capture) HarnessOption {
	return func(o *harnessOptions) {
		o.captures = captures
	}
}

func WithInbox(inbox *Inbox) HarnessOption {
	return func(o *harnessOptions) {
		o.inbox = inbox
	}
}

// NewHarness starts an engine around c. The engine is closed when the test
// ends.
func NewHarness(t *testing.T, c classifier.Classifier, opts ...HarnessOption) *Harness {
	t.Helper()
	o := &harnessOptions{session: "test"}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = memory.NewMemoryCache()
	}
	if o.inbox == nil {
		o.inbox = &Inbox{}
	}

	ctx := memory.WithSessionKey(context.Background(), o.session)
	narrated := &bytes.Buffer{}
	port := capture.NewScriptedPort(o.captures...)
	viewport := dispatch.NewViewport(narrated)
	store := memory.NewStore(o.cache, memory.WithKeyFunc(memory.SessionKeyFunc))
	engine := agent.NewEngine(ctx, agent.Config{
		Classifier: classifier.NewClient(c),
		Memory:     store,
		Effects:    dispatch.New(port, viewport, o.inbox, store),
	})
	engine.Start()
	t.Cleanup(engine.Close)

	return &Harness{
		Engine:   engine,
		Port:     port,
		Viewport: viewport,
		Inbox:    o.inbox,
		Store:    store,
		Cache:    o.cache,
		Narrated: narrated,
		ctx:      ctx,
	}
}

func (h *Harness) Context() context.Context {
	return h.ctx
}

// Say runs one turn and fails the test if the engine does not answer.
func (h *Harness) Say(t *testing.T, text string) *types.AgentResponse {
	t.Helper()
	ctx, cancel := context.WithTimeout(h.ctx, 30*time.Second)
	defer cancel()
	resp, err := h.Engine.Ask(ctx, text)
	if err != nil {
		t.Fatalf("ask %q: %v", text, err)
	}
	t.Logf("user: %s -> %s %q", text, resp.Intent, resp.AgentSays)
	return resp
}

// WaitFor blocks until the engine publishes a state matching pred.
func (h *Harness) WaitFor(t *testing.T, pred func(agent.State) bool) agent.State {
	t.Helper()
	iter, cancel := h.Engine.Subscribe()
	defer cancel()
	timer := time.AfterFunc(5*time.Second, cancel)
	defer timer.Stop()
	for {
		st, ok := iter.Next()
		if !ok {
			t.Fatalf("timed out waiting for state, last snapshot: %+v", h.Engine.Snapshot())
		}
		if pred(st) {
			return st
		}
	}
}

// Idle waits until nothing is in flight, including speech.
func (h *Harness) Idle(t *testing.T) agent.State {
	t.Helper()
	return h.WaitFor(t, func(st agent.State) bool {
		return !st.IsListening && !st.IsProcessing && !st.IsSpeaking && !st.ContactForm.IsSubmitting
	})
}

func liveEnabled(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("VOICEAGENT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set VOICEAGENT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	conf, err := config.Load(os.Getenv("VOICEAGENT_CONFIG"))
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	return conf
}

// InitChatModel builds the OpenAI-compatible chat model for live tests.
func InitChatModel(t *testing.T) *openai.ChatModel {
	conf := liveEnabled(t)
	if conf == nil {
		return nil
	}
	if conf.APIKey == "" {
		t.Skip("OPENAI_API_KEY is empty")
		return nil
	}
	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// InitGemini builds the Gemini classifier for live tests.
func InitGemini(t *testing.T) classifier.Classifier {
	conf := liveEnabled(t)
	if conf == nil {
		return nil
	}
	if conf.GeminiAPIKey == "" {
		t.Skip("GEMINI_API_KEY is empty")
		return nil
	}
	var opts []classifier.Option
	if len(conf.GeminiModels) > 0 {
		opts = append(opts, classifier.WithModels(conf.GeminiModels...))
	}
	c, err := classifier.NewGenAIClassifier(context.Background(), conf.GeminiAPIKey, opts...)
	if err != nil {
		t.Fatalf("failed to init gemini: %v", err)
		return nil
	}
	return c
}
