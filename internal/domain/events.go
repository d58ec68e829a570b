package domain

// Event names delivered to observers.
const (
	EventListUpdated    = "download://list-updated"
	EventProgress       = "download://progress"
	EventError          = "download://error"
	EventLibraryUpdated = "library://updated"
)

// Event is a named notification with a JSON-serialisable payload.
type Event struct {
	Payload any    `json:"payload"`
	Name    string `json:"name"`
}

// ProgressPayload accompanies every output line and every progress update.
// Progress is ProgressIndeterminate for plain log lines.
type ProgressPayload struct {
	ID             string    `json:"id"`
	Status         JobStatus `json:"status"`
	DetailedStatus string    `json:"detailed_status,omitempty"`
	Log            string    `json:"log,omitempty"`
	Progress       float64   `json:"progress"`
}

// ErrorPayload is published when a job ends in error.
type ErrorPayload struct {
	ID          string `json:"id"`
	Error       string `json:"error"`
	IsCancelled bool   `json:"is_cancelled"`
}

// Library actions carried by LibraryPayload.
const (
	LibraryAdded   = "added"
	LibraryRemoved = "removed"
	LibraryUpdated = "updated"
)

// LibraryPayload is published whenever a song is committed, retagged or removed.
type LibraryPayload struct {
	SongID string `json:"song_id"`
	Action string `json:"action"`
}
