package entities

// BotLabel is the perplexity-based bot/human verdict
type BotLabel string

const (
	BotLike    BotLabel = "BOT-like"
	HumanLike  BotLabel = "HUMAN-like"
	BotUnknown BotLabel = "UNKNOWN"
)

// SpeechPatterns holds per-speaker behavioral statistics
type SpeechPatterns struct {
	ScamScore          float64  `json:"scam_score"`
	BotHumanScore      BotLabel `json:"bot_human_score"`
	Perplexity         float64  `json:"perplexity"`
	HasFillerWords     bool     `json:"has_filler_words"`
	WordsPerMinute     float64  `json:"words_per_minute"`
	AvgSegmentDuration float64  `json:"avg_segment_duration"`
	DurationVariance   float64  `json:"duration_variance"`
	TranslationRatio   float64  `json:"translation_ratio"`
	TotalWords         int      `json:"total_words"`
}

// SpeakerProfile aggregates all segments sharing a speaker id
type SpeakerProfile struct {
	SpeakerID        string         `json:"speaker_id"`
	TotalSegments    int            `json:"total_segments"`
	TotalDuration    float64        `json:"total_duration"`
	Language         string         `json:"language"`
	AvgSegmentLength float64        `json:"avg_segment_length"`
	SpeechPatterns   SpeechPatterns `json:"speech_patterns"`
	RiskIndicators   []string       `json:"risk_indicators"`
}

// ConversationBalance classifies how evenly speaking time is shared
type ConversationBalance string

const (
	BalanceWellBalanced       ConversationBalance = "well_balanced"
	BalanceModeratelyBalanced ConversationBalance = "moderately_balanced"
	BalanceImbalanced         ConversationBalance = "imbalanced"
	BalanceHighlyImbalanced   ConversationBalance = "highly_imbalanced"
	BalanceUnknown            ConversationBalance = "unknown"
)

// ConversationFlow describes turn-taking across speakers
type ConversationFlow struct {
	TotalTurns          int                 `json:"total_turns"`
	TotalDuration       float64             `json:"total_duration"`
	SpeakerDominance    map[string]float64  `json:"speaker_dominance"`
	AvgTurnDuration     float64             `json:"avg_turn_duration"`
	TurnVariance        float64             `json:"turn_variance"`
	ConversationBalance ConversationBalance `json:"conversation_balance"`
	Turns               []Turn              `json:"turns,omitempty"`
}

// MaxDominance returns the largest dominance fraction, 0 when empty
func (f ConversationFlow) MaxDominance() float64 {
	max := 0.0
	for _, d := range f.SpeakerDominance {
		if d > max {
			max = d
		}
	}
	return max
}
