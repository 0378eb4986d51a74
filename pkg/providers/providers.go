// Package providers defines the external collaborators the workflow engine
// consumes: an audio source, a transcription provider and a
// structured-reasoning provider. The engine only sees these interfaces; the
// concrete clients own credentials, timeouts and retry policy.
package providers

import (
	"context"
	"errors"
)

// Error kinds. Concrete providers wrap their failures with one of these so
// stages can report a stable failure category without knowing the client.
var (
	ErrSourceUnavailable        = errors.New("video source unavailable")
	ErrTranscriptionUnavailable = errors.New("transcription provider unavailable")
	ErrProviderUnavailable      = errors.New("reasoning provider unavailable")
	ErrSchemaViolation          = errors.New("reasoning provider returned schema-violating output")
)

// VideoInput locates the video to analyze. Exactly one field is populated.
type VideoInput struct {
	URL  string
	Path string
}

// AudioAsset is a temporary audio file plus whatever container metadata the
// source could resolve. Callers must invoke Cleanup on every exit path.
type AudioAsset struct {
	Path            string
	Title           string
	DurationSeconds int
	LanguageCode    string

	cleanup func() error
}

// NewAudioAsset builds an asset with an optional cleanup hook.
func NewAudioAsset(path string, cleanup func() error) *AudioAsset {
	return &AudioAsset{Path: path, cleanup: cleanup}
}

// Cleanup releases the temporary audio file. Safe to call when no cleanup
// hook was registered.
func (a *AudioAsset) Cleanup() error {
	if a == nil || a.cleanup == nil {
		return nil
	}

	return a.cleanup()
}

// Transcription is the transcription provider's output.
type Transcription struct {
	Text         string
	LanguageCode string
}

// StructuredRequest asks the reasoning provider for output conforming to a
// JSON schema. The provider validates the response against Schema before
// returning it; a nonconformant response surfaces as ErrSchemaViolation.
type StructuredRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     []byte
}

// AudioSource yields a temporary audio asset for a video locator.
type AudioSource interface {
	Fetch(ctx context.Context, input VideoInput) (*AudioAsset, error)
}

// Transcriber turns an audio file into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Transcription, error)
}

// Reasoner returns schema-conformant JSON for a structured request.
type Reasoner interface {
	Complete(ctx context.Context, req StructuredRequest) ([]byte, error)
}
