// Package models defines the shared state threaded through the analysis
// workflow and the persisted analysis record.
package models

import "time"

// Status tracks how far a workflow run has progressed.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusExtracted  Status = "extracted"
	StatusAnalyzed   Status = "analyzed"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Terminal reports whether no further stage may run after this status.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSkipped
}

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusExtracted, StatusAnalyzed, StatusSuccess, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Sentiment is the overall sentiment label produced by the sentiment stage.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// KeyPointCount is the exact number of key points a successful run carries.
const KeyPointCount = 3

// VideoMetadata groups the source-level fields of the final result.
type VideoMetadata struct {
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	LanguageCode    string `json:"language_code"`
}

// AnalysisOutcome groups the derived fields of the final result.
type AnalysisOutcome struct {
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"`
	Tone           string    `json:"tone"`
	KeyPoints      []string  `json:"key_points"`
}

// FinalResult is the externally shaped composite returned to callers when a
// run succeeds.
type FinalResult struct {
	VideoMetadata VideoMetadata   `json:"video_metadata"`
	Analysis      AnalysisOutcome `json:"analysis"`
}

// AnalysisState is the record threaded through the workflow. Input fields are
// set once before the run starts; every other field is optional until the
// owning stage has produced it. Stages never mutate a state in place: they
// return a StateDelta and the controller applies it onto a copy.
type AnalysisState struct {
	// Input
	ID        string
	VideoURL  string
	VideoPath string

	// Extraction output
	Transcript      *string
	Title           *string
	DurationSeconds *int
	LanguageCode    *string

	// Sentiment output
	Sentiment      *Sentiment
	SentimentScore *float64
	Tone           *string

	// Structuring output
	KeyPoints   []string
	FinalResult *FinalResult

	// Control
	Errors []string
	Status Status

	CreatedAt time.Time
}

// NewAnalysisState builds the initial state for one workflow run. Exactly one
// of videoURL/videoPath is expected to be populated by the caller.
func NewAnalysisState(id, videoURL, videoPath string) AnalysisState {
	return AnalysisState{
		ID:        id,
		VideoURL:  videoURL,
		VideoPath: videoPath,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
}

// StateDelta is the partial state a stage returns. Nil fields leave the base
// state untouched; Errors are appended, never replaced.
type StateDelta struct {
	Transcript      *string
	Title           *string
	DurationSeconds *int
	LanguageCode    *string

	Sentiment      *Sentiment
	SentimentScore *float64
	Tone           *string

	KeyPoints   []string
	FinalResult *FinalResult

	Errors []string
	Status Status
}

// FailureDelta builds the delta a stage returns on an unrecoverable failure.
func FailureDelta(message string) StateDelta {
	return StateDelta{
		Errors: []string{message},
		Status: StatusFailed,
	}
}

// SkipDelta builds the delta a stage returns when its required input is
// missing and the run must stop without being treated as a provider failure.
func SkipDelta(reason string) StateDelta {
	return StateDelta{
		Errors: []string{reason},
		Status: StatusSkipped,
	}
}

// Apply merges a delta into a copy of the state and returns the copy. Input
// fields are never overwritten and the errors sequence is append-only.
func (s AnalysisState) Apply(d StateDelta) AnalysisState {
	next := s

	if d.Transcript != nil {
		next.Transcript = d.Transcript
	}

	if d.Title != nil {
		next.Title = d.Title
	}

	if d.DurationSeconds != nil {
		next.DurationSeconds = d.DurationSeconds
	}

	if d.LanguageCode != nil {
		next.LanguageCode = d.LanguageCode
	}

	if d.Sentiment != nil {
		next.Sentiment = d.Sentiment
	}

	if d.SentimentScore != nil {
		next.SentimentScore = d.SentimentScore
	}

	if d.Tone != nil {
		next.Tone = d.Tone
	}

	if d.KeyPoints != nil {
		next.KeyPoints = append([]string(nil), d.KeyPoints...)
	}

	if d.FinalResult != nil {
		next.FinalResult = d.FinalResult
	}

	if len(d.Errors) > 0 {
		next.Errors = append(append([]string(nil), s.Errors...), d.Errors...)
	}

	if d.Status != "" {
		next.Status = d.Status
	}

	return next
}

// Halted reports whether the continuation predicate forbids running another
// stage against this state.
func (s AnalysisState) Halted() bool {
	return len(s.Errors) > 0 || s.Status == StatusFailed || s.Status == StatusSkipped
}
