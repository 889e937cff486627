package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CodingGarden/yt-caption-downloader/internal/errors"
)

const sampleTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="5">Hello and welcome</text>` +
	`<text start="3" dur="5">it&amp;#39;s a live stream</text>` +
	`</transcript>`

func watchPage(captions string) string {
	return `<!DOCTYPE html><html><head><script>var ytInitialPlayerResponse = {"responseContext":{},` +
		`"captions":` + captions + `,"videoDetails":{"videoId":"abc123"}};</script></head></html>`
}

// fakeYouTube serves a watch page and a timed-text document, recording request headers
type fakeYouTube struct {
	mu              sync.Mutex
	page            string
	pageStatus      int
	timedText       string
	timedTextStatus int
	watchHeaders    http.Header
	timedHeaders    http.Header
	requests        int
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	switch r.URL.Path {
	case "/watch":
		f.watchHeaders = r.Header.Clone()
		if f.pageStatus != 0 {
			w.WriteHeader(f.pageStatus)
		}
		_, _ = w.Write([]byte(f.page))
	case "/api/timedtext":
		f.timedHeaders = r.Header.Clone()
		if f.timedTextStatus != 0 {
			w.WriteHeader(f.timedTextStatus)
		}
		_, _ = w.Write([]byte(f.timedText))
	default:
		http.NotFound(w, r)
	}
}

func newExtractorClient(t *testing.T, fake *fakeYouTube) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewClient("key", WithWatchURL(server.URL+"/watch")), server
}

const relativeTrack = `{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"/api/timedtext?v=abc123&lang=en","languageCode":"en","kind":"asr"},` +
	`{"baseUrl":"/api/timedtext?v=abc123&lang=de","languageCode":"de"}]}}`

func TestClient_ExtractTranscript(t *testing.T) {
	fake := &fakeYouTube{page: watchPage(relativeTrack), timedText: sampleTimedText}
	client, server := newExtractorClient(t, fake)

	transcript, err := client.ExtractTranscript(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", transcript.VideoID)
	assert.Equal(t, sampleTimedText, transcript.RawXML, "raw XML is passed through verbatim")
	assert.Equal(t,
		"1\n00:00:00,000 --> 00:00:03,000\nHello and welcome\n"+
			"\n"+
			"2\n00:00:03,000 --> 00:00:08,000\nit's a live stream\n",
		transcript.SRT)
	require.Len(t, transcript.Cues, 2)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.watchHeaders.Get("User-Agent"), "Mozilla/5.0")
	assert.NotEmpty(t, fake.watchHeaders.Get("Accept-Language"))
	assert.Equal(t, server.URL+"/watch?v=abc123", fake.timedHeaders.Get("Referer"))
	assert.Equal(t, 2, fake.requests)
}

func TestClient_ExtractTranscript_AbsoluteTrackURL(t *testing.T) {
	timed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(sampleTimedText))
	}))
	defer timed.Close()

	track := `{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"` + timed.URL + `/api/timedtext?lang=en"}]}}`
	client, _ := newExtractorClient(t, &fakeYouTube{page: watchPage(track)})

	transcript, err := client.ExtractTranscript(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Len(t, transcript.Cues, 2)
}

func TestClient_ExtractTranscript_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fake     *fakeYouTube
		wantCode string
		wantMsg  string
	}{
		{
			name:     "watch page without captions",
			fake:     &fakeYouTube{page: `<html>{"videoDetails":{}}</html>`},
			wantCode: apperrors.CodeNoCaptions,
			wantMsg:  "no captions found",
		},
		{
			name:     "no caption tracks",
			fake:     &fakeYouTube{page: watchPage(`{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}`)},
			wantCode: apperrors.CodeNoCaptions,
			wantMsg:  "no caption track",
		},
		{
			name:     "malformed caption JSON",
			fake:     &fakeYouTube{page: watchPage(`{"playerCaptionsTracklistRenderer":`)},
			wantCode: apperrors.CodeExternal,
			wantMsg:  "failed to parse caption data",
		},
		{
			name:     "watch page error status",
			fake:     &fakeYouTube{page: "gone", pageStatus: http.StatusNotFound},
			wantCode: apperrors.CodeExternal,
			wantMsg:  "returned status 404",
		},
		{
			name:     "timed-text error status",
			fake:     &fakeYouTube{page: watchPage(relativeTrack), timedTextStatus: http.StatusTooManyRequests},
			wantCode: apperrors.CodeExternal,
			wantMsg:  "returned status 429",
		},
		{
			name:     "timed-text not XML",
			fake:     &fakeYouTube{page: watchPage(relativeTrack), timedText: "<html><body>captcha"},
			wantCode: apperrors.CodeExternal,
			wantMsg:  "invalid timed-text document",
		},
		{
			name:     "timed-text without cues",
			fake:     &fakeYouTube{page: watchPage(relativeTrack), timedText: "<transcript></transcript>"},
			wantCode: apperrors.CodeNoCaptions,
			wantMsg:  "empty timed-text document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newExtractorClient(t, tt.fake)

			transcript, err := client.ExtractTranscript(context.Background(), "abc123")
			require.Error(t, err)
			assert.Nil(t, transcript)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "unexpected error: %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

type stubLocator struct {
	fragment string
}

func (l stubLocator) Locate(page string) (string, error) {
	if !strings.Contains(page, "player") {
		return "", ErrNoCaptions
	}
	return l.fragment, nil
}

func TestClient_ExtractTranscript_CustomLocator(t *testing.T) {
	fake := &fakeYouTube{page: "<html>new player layout</html>", timedText: sampleTimedText}
	server := httptest.NewServer(fake)
	defer server.Close()

	client := NewClient("key",
		WithWatchURL(server.URL+"/watch"),
		WithCaptionLocator(stubLocator{fragment: relativeTrack}),
	)

	transcript, err := client.ExtractTranscript(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Len(t, transcript.Cues, 2)
}

func TestClient_ExtractTranscript_RequiresVideoID(t *testing.T) {
	_, err := NewClient("key").ExtractTranscript(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
}

func TestClient_WatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", NewClient("key").WatchURL("abc123"))
}
