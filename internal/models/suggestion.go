package models

// SuggestionType names the dominant signal behind a suggestion.
type SuggestionType string

const (
	SuggestionPattern      SuggestionType = "pattern"
	SuggestionPreference   SuggestionType = "preference"
	SuggestionAvailability SuggestionType = "availability"
	SuggestionOptimal      SuggestionType = "optimal"
)

// SmartSuggestion is a ranked candidate meeting window. It is built by
// the ranker and never mutated afterwards.
type SmartSuggestion struct {
	ID                string
	Window            AvailabilityWindow
	Confidence        float64 // in [0,1]
	Reasoning         []string
	PatternBased      bool
	MutualConvenience float64 // in [0,1]
	SuggestionType    SuggestionType
}
