package memory

import (
	"context"
	"log/slog"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tbxark/voiceagent/types"
)

// Namespace prefixes every persisted record key.
const Namespace = "agent_memory_v1"

type KeyFunc func(ctx context.Context) (string, bool)

// Store is the durable mirror of the dialogue state. A nil Store, or one
// without a backend, behaves as an unavailable medium: Load reports absent
// memory and Save and Clear do nothing. Backend errors are logged and never
// returned.
type Store struct {
	core       Cache[[]byte]
	namespace  string
	keyFn      KeyFunc
	maxHistory int
}

type StoreOption func(*Store)

func WithNamespace(namespace string) StoreOption {
	return func(s *Store) {
		s.namespace = namespace
	}
}

func WithKeyFunc(fn KeyFunc) StoreOption {
	return func(s *Store) {
		s.keyFn = fn
	}
}

// WithHistoryLimit keeps only the last n persisted history entries. The
// in-memory history is not affected.
func WithHistoryLimit(n int) StoreOption {
	return func(s *Store) {
		s.maxHistory = n
	}
}

func NewStore(core Cache[[]byte], opts ...StoreOption) *Store {
	s := &Store{
		core:      core,
		namespace: Namespace,
		keyFn:     SessionKeyFunc,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) available() bool {
	return s != nil && s.core != nil
}

func (s *Store) key(ctx context.Context) (string, bool) {
	key, exist := s.keyFn(ctx)
	if !exist {
		return "", false
	}
	return s.namespace + ":" + key, true
}

func (s *Store) Load(ctx context.Context) (*types.Memory, bool) {
	if !s.available() {
		return nil, false
	}
	key, ok := s.key(ctx)
	if !ok {
		return nil, false
	}
	raw, found, err := s.core.Get(ctx, key)
	if err != nil {
		slog.Warn("load agent memory failed", "key", key, "error", err)
		return nil, false
	}
	if !found || len(raw) == 0 {
		return nil, false
	}
	var mem types.Memory
	if err := sonic.Unmarshal(raw, &mem); err != nil {
		slog.Warn("discarding unreadable agent memory", "key", key, "error", err)
		return nil, false
	}
	if mem.IsEmpty() {
		return nil, false
	}
	return &mem, true
}

// Save merge-writes partial over the stored record: fields absent from
// partial keep their persisted value.
func (s *Store) Save(ctx context.Context, partial *types.Memory) {
	if !s.available() || partial.IsEmpty() {
		return
	}
	key, ok := s.key(ctx)
	if !ok {
		return
	}
	update := *partial
	update.History = KeepLastN(update.History, s.maxHistory)
	patchDoc, err := sonic.Marshal(&update)
	if err != nil {
		slog.Warn("encode agent memory failed", "error", err)
		return
	}

	current, found, err := s.core.Get(ctx, key)
	if err != nil {
		slog.Warn("read agent memory before merge failed", "key", key, "error", err)
		found = false
	}
	if !found || len(current) == 0 {
		current = []byte("{}")
	}
	merged, err := jsonpatch.MergePatch(current, patchDoc)
	if err != nil {
		slog.Warn("stored agent memory is corrupt, overwriting", "key", key, "error", err)
		merged = patchDoc
	}
	if err := s.core.Set(ctx, key, merged); err != nil {
		slog.Warn("write agent memory failed", "key", key, "error", err)
	}
}

func (s *Store) Clear(ctx context.Context) {
	if !s.available() {
		return
	}
	key, ok := s.key(ctx)
	if !ok {
		return
	}
	if err := s.core.Del(ctx, key); err != nil {
		slog.Warn("clear agent memory failed", "key", key, "error", err)
	}
}

// KeepLastN returns the last n messages. n <= 0 keeps everything.
func KeepLastN(history []types.Message, n int) []types.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
