package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UploadSource serves locally uploaded video files. Whisper demuxes mp4
// containers itself, so the uploaded file is handed to the transcriber as-is.
// The asset's Cleanup removes the upload from the spool directory.
type UploadSource struct{}

func NewUploadSource() *UploadSource {
	return &UploadSource{}
}

func (s *UploadSource) Fetch(_ context.Context, input VideoInput) (*AudioAsset, error) {
	if input.Path == "" {
		return nil, fmt.Errorf("%w: no uploaded file provided", ErrSourceUnavailable)
	}

	if _, err := os.Stat(input.Path); err != nil {
		return nil, fmt.Errorf("%w: uploaded file unreadable: %w", ErrSourceUnavailable, err)
	}

	asset := NewAudioAsset(input.Path, func() error {
		return removeIfExists(input.Path)
	})

	base := filepath.Base(input.Path)
	asset.Title = strings.TrimSuffix(base, filepath.Ext(base))

	return asset, nil
}
