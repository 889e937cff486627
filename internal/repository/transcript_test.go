package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

func TestFileTranscriptRepository_SaveAndExists(t *testing.T) {
	dataDir := t.TempDir()
	repo := NewFileTranscriptRepository(dataDir)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, exists)

	transcript := &model.Transcript{
		VideoID: "abc123",
		RawXML:  `<transcript><text start="0" dur="1">hi</text></transcript>`,
		SRT:     "1\n00:00:00,000 --> 00:00:01,000\nhi\n",
	}
	require.NoError(t, repo.Save(ctx, transcript))

	exists, err = repo.Exists(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)

	raw, err := os.ReadFile(filepath.Join(dataDir, "abc123", RawCaptionsFile))
	require.NoError(t, err)
	assert.Equal(t, transcript.RawXML, string(raw))

	srt, err := os.ReadFile(filepath.Join(dataDir, "abc123", SRTCaptionsFile))
	require.NoError(t, err)
	assert.Equal(t, transcript.SRT, string(srt))

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Join(dataDir, "abc123"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileTranscriptRepository_ExistsNeedsBothFiles(t *testing.T) {
	dataDir := t.TempDir()
	repo := NewFileTranscriptRepository(dataDir)

	dir := filepath.Join(dataDir, "vid1")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, RawCaptionsFile), []byte("<transcript/>"), 0644))

	exists, err := repo.Exists(context.Background(), "vid1")
	require.NoError(t, err)
	assert.False(t, exists, "a lone captions.xml does not mark the video processed")
}

func TestFileTranscriptRepository_SaveOverwrites(t *testing.T) {
	dataDir := t.TempDir()
	repo := NewFileTranscriptRepository(dataDir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &model.Transcript{VideoID: "v", RawXML: "old", SRT: "old"}))
	require.NoError(t, repo.Save(ctx, &model.Transcript{VideoID: "v", RawXML: "new", SRT: "new"}))

	srt, err := os.ReadFile(filepath.Join(repo.Dir("v"), SRTCaptionsFile))
	require.NoError(t, err)
	assert.Equal(t, "new", string(srt))
}

func TestFileTranscriptRepository_InvalidVideoID(t *testing.T) {
	repo := NewFileTranscriptRepository(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "x..y"} {
		t.Run(id, func(t *testing.T) {
			_, err := repo.Exists(ctx, id)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))

			err = repo.Save(ctx, &model.Transcript{VideoID: id})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
		})
	}

	assert.Error(t, repo.Save(ctx, nil))
}
