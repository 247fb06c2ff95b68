package patch

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
)

// GeneratePatchesFromPartial diffs a partial document against the current one.
// Zero values in the partial (empty strings, false, empty containers) are treated
// as "not provided" and never clear a value that is already set.
func GeneratePatchesFromPartial[C, P any](current C, partial P) ([]Operation, error) {
	currentMap, err := toObject(current)
	if err != nil {
		return nil, fmt.Errorf("failed to convert current state: %w", err)
	}
	partialMap, err := toObject(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to convert partial state: %w", err)
	}

	patches := make([]Operation, 0, len(partialMap))
	generatePatchesFromMap("", currentMap, partialMap, &patches)
	return patches, nil
}

func toObject(v any) (map[string]any, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if string(raw) == "null" {
		return out, nil
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func generatePatchesFromMap(prefix string, current, partial map[string]any, patches *[]Operation) {
	for key, partialValue := range partial {
		if isZeroValue(partialValue) {
			continue
		}

		path := prefix + "/" + escapeJSONPointer(key)
		currentValue, existsInCurrent := current[key]

		if partialObj, ok := partialValue.(map[string]any); ok {
			if currentObj, ok := currentValue.(map[string]any); ok {
				generatePatchesFromMap(path, currentObj, partialObj, patches)
			} else {
				*patches = append(*patches, Operation{Op: OperationReplace, Path: path, Value: partialValue})
			}
			continue
		}

		if !existsInCurrent {
			*patches = append(*patches, Operation{Op: OperationAdd, Path: path, Value: partialValue})
		} else if !reflect.DeepEqual(currentValue, partialValue) {
			*patches = append(*patches, Operation{Op: OperationReplace, Path: path, Value: partialValue})
		}
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeJSONPointer(token string) string {
	return pointerEscaper.Replace(token)
}

// isZeroValue reports whether a partial value counts as not provided. Booleans
// are always provided: an absent flag is omitted from the partial entirely, so
// an explicit false must still reach the target.
func isZeroValue(v any) bool {
	if v == nil {
		return true
	}

	switch val := v.(type) {
	case string:
		return val == ""
	case float64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
