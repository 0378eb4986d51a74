package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSource_Fetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	videoPath := filepath.Join(dir, "my-clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("not really a video"), 0o600))

	source := NewUploadSource()
	asset, err := source.Fetch(context.Background(), VideoInput{Path: videoPath})

	require.NoError(t, err)
	assert.Equal(t, videoPath, asset.Path)
	assert.Equal(t, "my-clip", asset.Title)

	require.NoError(t, asset.Cleanup())
	assert.NoFileExists(t, videoPath, "cleanup removes the upload from the spool directory")
}

func TestUploadSource_MissingPath(t *testing.T) {
	t.Parallel()

	source := NewUploadSource()

	_, err := source.Fetch(context.Background(), VideoInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestUploadSource_UnreadableFile(t *testing.T) {
	t.Parallel()

	source := NewUploadSource()

	_, err := source.Fetch(context.Background(), VideoInput{Path: filepath.Join(t.TempDir(), "gone.mp4")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAudioAsset_CleanupWithoutHook(t *testing.T) {
	t.Parallel()

	asset := NewAudioAsset("/tmp/a.mp3", nil)
	assert.NoError(t, asset.Cleanup())

	var nilAsset *AudioAsset
	assert.NoError(t, nilAsset.Cleanup())
}
