package models

import "time"

// Analysis is the persisted record of one workflow run, terminal or not.
type Analysis struct {
	ID        string    `json:"id"`
	VideoURL  string    `json:"video_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	LanguageCode    string `json:"language_code"`

	Transcript string `json:"transcript,omitempty"`

	Sentiment      Sentiment `json:"sentiment,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
	Tone           string    `json:"tone,omitempty"`
	KeyPoints      []string  `json:"key_points,omitempty"`

	Status Status   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// AnalysisFromState flattens a terminal workflow state into the record the
// persistence layer stores. Absent optional fields map to zero values.
func AnalysisFromState(state AnalysisState) *Analysis {
	analysis := &Analysis{
		ID:        state.ID,
		VideoURL:  state.VideoURL,
		CreatedAt: state.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Status:    state.Status,
		Errors:    append([]string(nil), state.Errors...),
	}

	if state.Transcript != nil {
		analysis.Transcript = *state.Transcript
	}

	if state.Title != nil {
		analysis.Title = *state.Title
	}

	if state.DurationSeconds != nil {
		analysis.DurationSeconds = *state.DurationSeconds
	}

	if state.LanguageCode != nil {
		analysis.LanguageCode = *state.LanguageCode
	}

	if state.Sentiment != nil {
		analysis.Sentiment = *state.Sentiment
	}

	if state.SentimentScore != nil {
		analysis.SentimentScore = *state.SentimentScore
	}

	if state.Tone != nil {
		analysis.Tone = *state.Tone
	}

	if state.KeyPoints != nil {
		analysis.KeyPoints = append([]string(nil), state.KeyPoints...)
	}

	return analysis
}

// FinalResult rebuilds the externally shaped composite from a persisted
// record. Only meaningful for records with StatusSuccess.
func (a *Analysis) FinalResult() FinalResult {
	return FinalResult{
		VideoMetadata: VideoMetadata{
			Title:           a.Title,
			DurationSeconds: a.DurationSeconds,
			LanguageCode:    a.LanguageCode,
		},
		Analysis: AnalysisOutcome{
			Sentiment:      a.Sentiment,
			SentimentScore: a.SentimentScore,
			Tone:           a.Tone,
			KeyPoints:      append([]string(nil), a.KeyPoints...),
		},
	}
}
