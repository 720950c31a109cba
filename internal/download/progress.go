package download

import "sync"

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

// Snapshot is a point-in-time copy of a job's progress.
type Snapshot struct {
	Status   Status  `json:"status"`
	Percent  float64 `json:"progress"`
	Message  string  `json:"message"`
	Filename string  `json:"filename"`
	Filepath string  `json:"filepath"`
}

// Tracker is the mutable progress record owned by one job. All access goes
// through the mutex; HTTP handlers read snapshots while the job's goroutine
// writes.
type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Status: StatusIdle}}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// SetStarting resets the record to the starting state.
func (t *Tracker) SetStarting(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot{Status: StatusStarting, Message: message}
}

// SetProgress records an in-flight update.
func (t *Tracker) SetProgress(percent float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Status = StatusDownloading
	t.snap.Percent = percent
	t.snap.Message = message
}

// SetProcessing marks the post-download phase (merging, converting).
func (t *Tracker) SetProcessing(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Status = StatusProcessing
	t.snap.Message = message
}

// SetCompleted records the final file.
func (t *Tracker) SetCompleted(filename, filepath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot{
		Status:   StatusCompleted,
		Percent:  100,
		Message:  "Download complete",
		Filename: filename,
		Filepath: filepath,
	}
}

// SetError records a failure.
func (t *Tracker) SetError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Status = StatusError
	t.snap.Message = message
}

// SetCancelled records a user cancellation.
func (t *Tracker) SetCancelled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Status = StatusCancelled
	t.snap.Message = "Download cancelled"
}
