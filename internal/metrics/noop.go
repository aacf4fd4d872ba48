package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSucceeded is a no-op.
func (n *NoopRecorder) IncLoginSucceeded() {}

// IncLoginFailed is a no-op.
func (n *NoopRecorder) IncLoginFailed() {}

// IncNoteCreated is a no-op.
func (n *NoopRecorder) IncNoteCreated() {}

// IncNoteUpdated is a no-op.
func (n *NoopRecorder) IncNoteUpdated() {}

// IncNoteDeleted is a no-op.
func (n *NoopRecorder) IncNoteDeleted() {}
