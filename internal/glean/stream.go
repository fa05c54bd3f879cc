package glean

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const sourcesHeader = "\n\n🔍 *Fontes mencionadas pela Glean:*\n"

// maxLineSize bounds a single streamed event line.
const maxLineSize = 1 << 20

// Answer accumulates a streamed chat response: the concatenated content text,
// the first tracking token seen, and every citation in arrival order.
type Answer struct {
	Text          string
	TrackingToken string
	Citations     []Citation
}

// DecodeStream consumes a line-delimited JSON event stream to exhaustion.
// Blank keep-alive lines are skipped; a line that fails to parse is logged
// and skipped without aborting the rest of the stream. The first non-empty
// tracking token wins; later tokens in the same stream are ignored. A
// transport error mid-stream discards the accumulation and is returned.
func DecodeStream(r io.Reader) (*Answer, error) {
	var (
		text   strings.Builder
		answer Answer
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event chatEvent
		if err := json.Unmarshal(line, &event); err != nil {
			slog.Warn("skipping undecodable stream line", "error", err)
			continue
		}

		for _, msg := range event.Messages {
			if answer.TrackingToken == "" && msg.TrackingToken != "" {
				answer.TrackingToken = msg.TrackingToken
			}
			if msg.MessageType != MessageTypeContent {
				continue
			}
			for _, f := range msg.Fragments {
				text.WriteString(f.Text)
			}
			answer.Citations = append(answer.Citations, msg.Citations...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	answer.Text = text.String()
	return &answer, nil
}

// FinalText returns the accumulated answer text with the rendered sources
// section appended. When no citation is renderable, the text is returned
// unchanged.
func (a *Answer) FinalText() string {
	sources := renderSources(uniqueCitations(a.Citations))
	return a.Text + sources
}

// uniqueCitations deduplicates by resolved URL, first seen wins, preserving
// arrival order. Citations without any URL are kept only when they still
// carry a display text or document title; anything else is not actionable.
func uniqueCitations(citations []Citation) []Citation {
	seen := make(map[string]struct{})
	var unique []Citation
	for _, c := range citations {
		url := c.ResolvedURL()
		if url == "" {
			if c.Label() != "" {
				unique = append(unique, c)
			}
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

// renderSources formats the numbered sources section, one line per citation,
// as a markdown link when a URL exists and plain text otherwise. Returns the
// empty string when there is nothing to render.
func renderSources(citations []Citation) string {
	var b strings.Builder
	n := 0
	for _, c := range citations {
		label := c.Label()
		if label == "" {
			continue
		}
		if n == 0 {
			b.WriteString(sourcesHeader)
		}
		n++
		if url := c.ResolvedURL(); url != "" {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", n, label, url)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", n, label)
		}
	}
	return b.String()
}
