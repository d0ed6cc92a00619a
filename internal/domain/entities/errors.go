package entities

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step
type Stage string

const (
	StageSpoof        Stage = "spoof_detection"
	StageTranscribe   Stage = "transcription"
	StageSegmentation Stage = "segmentation"
	StageTranslation  Stage = "translation"
	StageScoring      Stage = "text_scoring"
	StageProfiling    Stage = "speaker_profiling"
	StagePipeline     Stage = "pipeline"
)

// StageError tags a failure with the stage that produced it
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err for stage; nil stays nil
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
