package recorder

// NoopRecorder discards runs; the CLI uses it when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord, _ []IterationRecord) error { return nil }
func (n *NoopRecorder) Runs(_ int) ([]RunRecord, error)                   { return nil, nil }
func (n *NoopRecorder) Iterations(_ string) ([]IterationRecord, error)    { return nil, nil }
func (n *NoopRecorder) Close() error                                      { return nil }

var _ Recorder = (*NoopRecorder)(nil)
