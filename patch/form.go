package patch

import (
	"fmt"
	"log/slog"

	"github.com/tbxark/voiceagent/types"
)

// FormPaths are the only contact form pointers a classifier may write.
// Submission flags stay under the state machine's control.
var FormPaths = AllJSONPointerPaths[types.FormData]()

// MergeFormData shallow-merges a classifier-provided partial form into current.
// Absent or empty fields keep their previous value.
func MergeFormData(current types.ContactForm, data *types.FormData) (types.ContactForm, error) {
	if data.IsEmpty() {
		return current, nil
	}
	ops, err := GeneratePatchesFromPartial(current, data)
	if err != nil {
		return current, fmt.Errorf("failed to diff form data: %w", err)
	}
	kept, dropped := FilterAllowed(ops, AllowedSet(FormPaths))
	if len(dropped) > 0 {
		slog.Debug("Dropped form patch operations", "ops", dropped)
	}
	merged, err := Apply(current, kept)
	if err != nil {
		return current, err
	}
	return merged, nil
}
