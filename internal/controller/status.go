package controller

// Status is the display state of the controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Messages shown to the user when an intent fails.
const (
	MsgLoadFailed   = "Failed to load tasks. Please check if the API is running. Error: %s"
	MsgAddFailed    = "Failed to add task"
	MsgUpdateFailed = "Failed to update task"
	MsgDeleteFailed = "Failed to delete task"
	MsgNotFound     = "Task not found"
)
