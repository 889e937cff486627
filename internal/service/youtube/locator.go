package youtube

import (
	"errors"
	"strings"
)

// ErrNoCaptions means the watch page carries no caption blob or no usable track
var ErrNoCaptions = errors.New("no captions found")

// CaptionLocator finds the caption JSON blob embedded in a watch page
type CaptionLocator interface {
	Locate(page string) (string, error)
}

// AnchorLocator cuts the blob between two literal anchors
type AnchorLocator struct {
	Start string
	End   string
}

// DefaultCaptionLocator matches the player response layout of the watch page
func DefaultCaptionLocator() AnchorLocator {
	return AnchorLocator{
		Start: `"captions":`,
		End:   `,"videoDetails`,
	}
}

// Locate returns the text between the anchors with newlines removed
func (l AnchorLocator) Locate(page string) (string, error) {
	_, rest, ok := strings.Cut(page, l.Start)
	if !ok {
		return "", ErrNoCaptions
	}

	fragment, _, ok := strings.Cut(rest, l.End)
	if !ok {
		return "", ErrNoCaptions
	}

	return strings.ReplaceAll(fragment, "\n", ""), nil
}
