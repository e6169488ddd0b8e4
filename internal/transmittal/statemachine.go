package transmittal

import (
	"fmt"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

// Action is an operation that depends on the current lifecycle state
type Action string

const (
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionGenerate Action = "generate"
	ActionSend     Action = "send"
	ActionReceive  Action = "receive"
)

// sources lists the states send, receive and generate may start from. Send and
// receive are only checked against it in strict mode.
var sources = map[Action][]models.Status{
	ActionGenerate: {models.StatusDraft},
	ActionSend:     {models.StatusGenerated, models.StatusSent},
	ActionReceive:  {models.StatusGenerated, models.StatusSent, models.StatusReceived},
}

// Allowed reports whether action may run on a transmittal in state from
func Allowed(action Action, from models.Status, strict bool) bool {
	switch action {
	case ActionEdit, ActionDelete:
		return from.Editable()
	case ActionSend, ActionReceive:
		if !strict {
			return true
		}
	}
	for _, s := range sources[action] {
		if s == from {
			return true
		}
	}
	return false
}

func rejection(action Action, from models.Status) error {
	switch action {
	case ActionEdit:
		return invalidState("Cannot edit generated transmittal")
	case ActionDelete:
		return invalidState("Cannot delete generated transmittal")
	case ActionGenerate:
		return invalidState("Transmittal already generated")
	default:
		if from == "" {
			return invalidState(fmt.Sprintf("Cannot %s transmittal in its current state", action))
		}
		return invalidState(fmt.Sprintf("Cannot %s transmittal in %s state", action, from))
	}
}

// FormatNumber renders a transmittal number such as TRN-2024-007
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("TRN-%d-%03d", year, seq)
}
