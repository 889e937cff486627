package youtube

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/CodingGarden/yt-caption-downloader/internal/model"
)

type timedTextDocument struct {
	Texts []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start string
	Dur   string
	Text  string
}

// UnmarshalXML keeps the character data of nested markup such as <font>,
// which a plain chardata field would drop
func (c *timedTextCue) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "start":
			c.Start = attr.Value
		case "dur":
			c.Dur = attr.Value
		}
	}

	var text strings.Builder
	depth := 0
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				c.Text = text.String()
				return nil
			}
			depth--
		}
	}
}

// ParseTimedText decodes a timed-text document into cues in document order
func ParseTimedText(raw []byte) ([]model.Cue, error) {
	var doc timedTextDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse timed-text XML: %w", err)
	}

	cues := make([]model.Cue, 0, len(doc.Texts))
	for i, text := range doc.Texts {
		start, err := parseSeconds(text.Start)
		if err != nil {
			return nil, fmt.Errorf("cue %d: invalid start %q: %w", i+1, text.Start, err)
		}
		duration, err := parseSeconds(text.Dur)
		if err != nil {
			return nil, fmt.Errorf("cue %d: invalid dur %q: %w", i+1, text.Dur, err)
		}

		cues = append(cues, model.Cue{
			Start:    start,
			Duration: duration,
			End:      start + duration,
			// Text arrives entity-encoded twice, e.g. &amp;#39;
			Text: html.UnescapeString(text.Text),
		})
	}

	return cues, nil
}

// parseSeconds parses a seconds attribute; a missing attribute counts as zero
func parseSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, errors.New("not a finite number")
	}
	return seconds, nil
}
