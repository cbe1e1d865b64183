package workflow

// RetrievalRequest is the FSM input
type RetrievalRequest struct {
	Code        string
	Destination string
}

// RetrievalResponse is the FSM output (accumulated across transitions)
type RetrievalResponse struct {
	// From CheckSession
	Files []string

	// From Download
	Downloaded []string

	// From Complete
	Outcome string
}

// State names
const (
	StateCheckSession = "check_session"
	StateDownload     = "download"
	StateComplete     = "complete"
	StateFailed       = "failed"
)
