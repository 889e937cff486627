package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

const (
	// RawCaptionsFile holds the timed-text XML exactly as downloaded
	RawCaptionsFile = "captions.xml"
	// SRTCaptionsFile holds the rendered SubRip document
	SRTCaptionsFile = "captions.srt"
)

// TranscriptRepository persists caption artifacts per video
type TranscriptRepository interface {
	// Exists reports whether both artifacts of a video are already stored
	Exists(ctx context.Context, videoID string) (bool, error)
	// Save stores the raw XML and SRT of a transcript
	Save(ctx context.Context, transcript *model.Transcript) error
	// Dir returns the directory holding a video's artifacts
	Dir(videoID string) string
}

// fileTranscriptRepository lays artifacts out as <dataDir>/<videoId>/captions.{xml,srt}
type fileTranscriptRepository struct {
	dataDir string
}

// NewFileTranscriptRepository creates a TranscriptRepository rooted at dataDir
func NewFileTranscriptRepository(dataDir string) TranscriptRepository {
	return &fileTranscriptRepository{
		dataDir: dataDir,
	}
}

// Dir returns the directory holding a video's artifacts
func (r *fileTranscriptRepository) Dir(videoID string) string {
	return filepath.Join(r.dataDir, videoID)
}

// Exists reports whether both captions.xml and captions.srt are present
func (r *fileTranscriptRepository) Exists(ctx context.Context, videoID string) (bool, error) {
	if err := validateVideoID(videoID); err != nil {
		return false, err
	}

	for _, name := range []string{RawCaptionsFile, SRTCaptionsFile} {
		_, err := os.Stat(filepath.Join(r.Dir(videoID), name))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, apperrors.Wrap(err, apperrors.CodeInternal, "failed to stat "+name)
		}
	}
	return true, nil
}

// Save writes both artifacts atomically. The SRT is written last so a crash
// between the two leaves the video unprocessed.
func (r *fileTranscriptRepository) Save(ctx context.Context, transcript *model.Transcript) error {
	if transcript == nil {
		return invalidArg("transcript is required")
	}
	if err := validateVideoID(transcript.VideoID); err != nil {
		return err
	}

	dir := r.Dir(transcript.VideoID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create video directory")
	}

	if err := writeFileAtomic(filepath.Join(dir, RawCaptionsFile), []byte(transcript.RawXML)); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write "+RawCaptionsFile)
	}
	if err := writeFileAtomic(filepath.Join(dir, SRTCaptionsFile), []byte(transcript.SRT)); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write "+SRTCaptionsFile)
	}
	return nil
}

// validateVideoID rejects IDs that would escape the data directory
func validateVideoID(videoID string) error {
	switch {
	case videoID == "":
		return invalidArg("video ID is required")
	case videoID == "." || videoID == ".." || strings.ContainsAny(videoID, `/\`) || strings.Contains(videoID, ".."):
		return invalidArg("invalid video ID: " + videoID)
	}
	return nil
}
