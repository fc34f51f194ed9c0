package refine

// Recorder receives refinement counters.
type Recorder interface {
	Operation(name string)
	Stage(stage string, n int)
}

type nopRecorder struct{}

func (nopRecorder) Operation(string)  {}
func (nopRecorder) Stage(string, int) {}
