package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
)

// YouTubeSource downloads the audio track of a YouTube video into a
// temporary file via yt-dlp.
type YouTubeSource struct {
	tempDir string
	logger  *slog.Logger
}

func NewYouTubeSource(tempDir string, logger *slog.Logger) *YouTubeSource {
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &YouTubeSource{
		tempDir: tempDir,
		logger:  logger,
	}
}

// ytMetadata is the subset of yt-dlp's single-JSON dump we care about.
type ytMetadata struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Language string  `json:"language"`
}

// Fetch resolves container metadata and downloads the audio track. The
// returned asset deletes the downloaded file on Cleanup.
func (s *YouTubeSource) Fetch(ctx context.Context, input VideoInput) (*AudioAsset, error) {
	if input.URL == "" {
		return nil, fmt.Errorf("%w: no video URL provided", ErrSourceUnavailable)
	}

	meta, err := s.metadata(ctx, input.URL)
	if err != nil {
		return nil, err
	}

	outputTemplate := filepath.Join(s.tempDir, uuid.NewString()+".%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		NoPlaylist().
		Output(outputTemplate)

	result, err := dl.Run(ctx, input.URL)
	if err != nil {
		var stderr string
		if result != nil {
			stderr = strings.TrimSpace(result.Stderr)
		}

		return nil, fmt.Errorf("%w: downloading audio: %w (%s)", ErrSourceUnavailable, err, stderr)
	}

	audioPath := strings.Replace(outputTemplate, "%(ext)s", "mp3", 1)
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("%w: downloaded audio missing: %w", ErrSourceUnavailable, err)
	}

	s.logger.Debug("downloaded audio", "video_url", input.URL, "audio_path", audioPath)

	asset := NewAudioAsset(audioPath, func() error {
		return removeIfExists(audioPath)
	})
	asset.Title = meta.Title
	asset.DurationSeconds = int(meta.Duration)
	asset.LanguageCode = normalizeLanguage(meta.Language)

	return asset, nil
}

func (s *YouTubeSource) metadata(ctx context.Context, videoURL string) (*ytMetadata, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting metadata: %w", ErrSourceUnavailable, err)
	}

	var meta ytMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata: %w", ErrSourceUnavailable, err)
	}

	return &meta, nil
}

// normalizeLanguage reduces yt-dlp language tags like "en-US" to the
// ISO 639-1 code, or empty when undetected.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ToLower(lang))
	if lang == "" {
		return ""
	}

	code, _, _ := strings.Cut(lang, "-")

	return strings.TrimSpace(code)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
