// ABOUTME: Extracts structured JSON payloads from fenced blocks in agent replies
// ABOUTME: Pure parsing: tolerant of prose around the JSON and bad quote escapes

package agent

import (
	"encoding/json"
	"strings"
)

// fence is the three-character sentinel delimiting structured blocks in
// agent replies, optionally followed by a language tag after the opener.
const fence = "^^^"

// ExtractedPayload is the result of splitting an agent reply into an
// optional structured payload and the remaining plain text.
type ExtractedPayload struct {
	Structured any
	PlainText  string
}

// ExtractStructuredPayload scans the raw reply for fenced blocks. The first
// block whose body parses as a JSON object or array becomes the structured
// payload; every fenced span (markers included) is removed from the plain
// text regardless of parse success. Parse failures never error: agent text
// is best-effort and degrades to "no structured payload".
func ExtractStructuredPayload(raw string) ExtractedPayload {
	spans := scanFencedBlocks(raw)

	var structured any
	for _, sp := range spans {
		if parsed, ok := parseCandidate(sp.body); ok {
			structured = parsed
			break
		}
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(raw[last:sp.start])
		last = sp.end
	}
	b.WriteString(raw[last:])

	return ExtractedPayload{
		Structured: structured,
		PlainText:  strings.TrimSpace(b.String()),
	}
}

// fencedSpan is one delimited block: the full span including both markers,
// and the body between them.
type fencedSpan struct {
	start int
	end   int
	body  string
}

// scanFencedBlocks finds paired fence occurrences in order of appearance.
// An unpaired trailing fence is ignored.
func scanFencedBlocks(raw string) []fencedSpan {
	var spans []fencedSpan
	i := 0
	for {
		open := strings.Index(raw[i:], fence)
		if open == -1 {
			break
		}
		open += i
		bodyStart := open + len(fence)

		length := strings.Index(raw[bodyStart:], fence)
		if length == -1 {
			break
		}
		bodyEnd := bodyStart + length

		spans = append(spans, fencedSpan{
			start: open,
			end:   bodyEnd + len(fence),
			body:  raw[bodyStart:bodyEnd],
		})
		i = bodyEnd + len(fence)
	}
	return spans
}

// parseCandidate turns one block body into structured data. Leading prose
// (including any language tag) before the first brace or bracket is
// discarded; trailing commentary after the last matching closer is cut.
func parseCandidate(body string) (any, bool) {
	candidate := strings.TrimSpace(body)
	if candidate == "" {
		return nil, false
	}

	idx := strings.IndexAny(candidate, "{[")
	if idx == -1 {
		return nil, false
	}
	candidate = strings.TrimSpace(candidate[idx:])

	// Opener check excludes scalars by construction.
	closer := byte('}')
	if candidate[0] == '[' {
		closer = ']'
	}
	lastClosing := strings.LastIndexByte(candidate, closer)
	if lastClosing == -1 {
		return nil, false
	}

	return parseJSONCandidate(candidate[:lastClosing+1])
}

// parseJSONCandidate attempts a strict parse, then a repair pass that strips
// erroneously escaped single quotes.
func parseJSONCandidate(candidate string) (any, bool) {
	if v, ok := parseJSON(candidate); ok {
		return v, true
	}

	repaired := stripInvalidEscapes(candidate)
	if repaired != candidate {
		if v, ok := parseJSON(repaired); ok {
			return v, true
		}
	}
	return nil, false
}

func parseJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// stripInvalidEscapes removes the backslash from \' sequences. JSON has no
// \' escape, so models that emit it break strict parsing. A backslash is
// removed only when preceded by an even number of backslashes: an odd count
// means the backslash itself is escaped and the pair is a genuine
// backslash followed by a quote.
func stripInvalidEscapes(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && i+1 < len(value) && value[i+1] == '\'' {
			backslashes := 0
			for j := i - 1; j >= 0 && value[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
