package entities

// RawSegment is a timed piece of text as returned by a transcriber
type RawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a speaker-attributed transcript segment.
// Text/IsTranslated may be rewritten by the translation step; everything else
// is fixed once the segmenter returns.
type Segment struct {
	SpeakerID        string  `json:"speaker_id"`
	StartTime        float64 `json:"start_time"`
	EndTime          float64 `json:"end_time"`
	Text             string  `json:"text"`
	OriginalText     string  `json:"original_text"`
	DetectedLanguage string  `json:"detected_language"`
	IsTranslated     bool    `json:"is_translated"`
}

// Duration returns the segment length in seconds
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Turn is a maximal run of time-consecutive segments from one speaker
type Turn struct {
	Speaker  string  `json:"speaker"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}
