package migration

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Progress is a snapshot of a run. Current only ever moves forward
// within a run, entity failures advance it like successes do.
type Progress struct {
	State   State    `json:"state"`
	Current int      `json:"current"`
	Total   int      `json:"total"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type ProgressFunc func(Progress)

func (e *Engine) OnProgress(fn ProgressFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onProgress = fn
}

// Progress returns the latest snapshot, usable while a run is in
// flight or after it ended.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Progress {
	p := e.progress
	p.Errors = append([]string(nil), e.progress.Errors...)
	return p
}

func (e *Engine) update(mutate func(p *Progress)) {
	e.mu.Lock()
	mutate(&e.progress)
	snapshot := e.snapshotLocked()
	fn := e.onProgress
	e.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}
