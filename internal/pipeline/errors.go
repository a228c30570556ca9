package pipeline

import "fmt"

// Stage identifies a pipeline stage in errors and logs.
type Stage string

const (
	StageExpand      Stage = "expand"
	StageRetrieve    Stage = "retrieve"
	StageRerank      Stage = "rerank"
	StageSynthesize  Stage = "synthesize"
	StagePostprocess Stage = "postprocess"
)

// StageError wraps a stage-local failure with stage identity. The pipeline
// performs no retries and no silent recovery; the triggering error is
// surfaced unmodified through Unwrap.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
