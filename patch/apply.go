package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Apply runs ops against the JSON form of current. Ops are normalized first
// so a replace of an absent member still lands.
func Apply[T any](current T, ops []Operation) (T, error) {
	if len(ops) == 0 {
		return current, nil
	}
	doc, err := sonic.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("marshal document: %w", err)
	}
	ops = Normalize(doc, ops)
	if len(ops) == 0 {
		return current, nil
	}
	raw, err := sonic.Marshal(ops)
	if err != nil {
		return current, fmt.Errorf("marshal patch: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return current, fmt.Errorf("decode patch: %w", err)
	}
	patched, err := p.Apply(doc)
	if err != nil {
		return current, fmt.Errorf("apply patch: %w", err)
	}
	var out T
	if err := sonic.Unmarshal(patched, &out); err != nil {
		return current, fmt.Errorf("patched document does not fit %T: %w", out, err)
	}
	return out, nil
}

// Normalize turns replace-on-absent into add and drops remove-on-absent.
func Normalize(doc []byte, ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		exists := hasPointer(doc, op.Path)
		switch {
		case op.Op == OperationReplace && !exists:
			op.Op = OperationAdd
		case op.Op == OperationRemove && !exists:
			continue
		}
		out = append(out, op)
	}
	return out
}

func hasPointer(doc []byte, pointer string) bool {
	if pointer == "" {
		return true
	}
	if !strings.HasPrefix(pointer, "/") {
		return false
	}
	var keys []any
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
		if i, err := strconv.Atoi(token); err == nil {
			keys = append(keys, i)
			continue
		}
		keys = append(keys, token)
	}
	node, err := sonic.Get(doc, keys...)
	return err == nil && node.Exists()
}
