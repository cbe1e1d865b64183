package session

// State is the derived lifecycle position of a session.
type State int

const (
	// StateNotFound means no document exists for the code.
	StateNotFound State = iota
	// StateExpired means the session's expiry has passed, regardless of files.
	StateExpired
	// StateWaiting means the session is live with no uploads yet.
	StateWaiting
	// StateHasFiles means the session is live and at least one file is listed.
	StateHasFiles
)

func (s State) String() string {
	switch s {
	case StateNotFound:
		return "not_found"
	case StateExpired:
		return "expired"
	case StateWaiting:
		return "waiting_for_files"
	case StateHasFiles:
		return "has_files"
	default:
		return "unknown"
	}
}

// Status is the result of one status query. Files is populated only for
// StateHasFiles.
type Status struct {
	State State
	Files []string
}
