package studio

import "errors"

// ValidationError rejects a submit whose required inputs are missing. Key
// names the catalog message so the HTTP layer can render it in the
// request's locale.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return "studio: missing required input: " + e.Key
}

var (
	// ErrBackendUnavailable means the operation needs a backend whose
	// credential was absent at startup.
	ErrBackendUnavailable = errors.New("studio: backend not configured")

	// ErrUnknownWorkflow rejects a workflow name outside the three modes.
	ErrUnknownWorkflow = errors.New("studio: unknown workflow")

	// ErrUnknownSlot rejects a slot name the target workflow does not have.
	ErrUnknownSlot = errors.New("studio: unknown slot for workflow")

	// ErrNoActiveOutput means a send or edit was requested while the
	// active workflow has nothing on its canvas.
	ErrNoActiveOutput = errors.New("studio: the active workflow has no output")

	// ErrIndexOutOfRange rejects a material or variation index past the
	// end of its list.
	ErrIndexOutOfRange = errors.New("studio: index out of range")

	// ErrChatBusy means a chat turn is already in flight for the session.
	ErrChatBusy = errors.New("studio: a chat turn is already in flight")
)
