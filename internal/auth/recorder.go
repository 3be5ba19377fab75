package auth

// Recorder receives resolution and authorization outcomes for counting.
type Recorder interface {
	RecordAttempt(scheme, outcome string)
	RecordDecision(entry, policy, decision string)
}

type NopRecorder struct{}

func (NopRecorder) RecordAttempt(string, string) {}

func (NopRecorder) RecordDecision(string, string, string) {}
