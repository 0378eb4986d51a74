package providers

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "en-US", want: "en"},
		{in: "EN", want: "en"},
		{in: "pt-BR", want: "pt"},
		{in: "es", want: "es"},
		{in: "", want: ""},
		{in: "  ", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, normalizeLanguage(tc.in))
		})
	}
}

func TestYouTubeSource_RequiresURL(t *testing.T) {
	t.Parallel()

	source := NewYouTubeSource(t.TempDir(), slog.Default())

	_, err := source.Fetch(context.Background(), VideoInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestRemoveIfExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, removeIfExists(path))
	assert.NoFileExists(t, path)

	// Removing it again is not an error.
	assert.NoError(t, removeIfExists(path))
}
