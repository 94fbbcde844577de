// Package segment splits narrative text into word spans that the playback
// synchronizer maps boundary offsets onto.
package segment

import "unicode"

// WordSpan is one word plus its trailing whitespace. Offsets are rune
// indices into the source text, matching the character offsets reported by
// speech engine boundary events.
type WordSpan struct {
	Text        string
	StartOffset int
}

// Segment splits text into word spans. Whitespace stays attached to the
// preceding word so that concatenating the spans in order reconstructs the
// input exactly. Empty input yields an empty sequence.
func Segment(text string) []WordSpan {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var spans []WordSpan
	i := 0
	for i < len(runes) {
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		spans = append(spans, WordSpan{
			Text:        string(runes[start:i]),
			StartOffset: start,
		})
	}
	return spans
}

// SpanAt returns the index of the last span whose StartOffset is at or
// before the given offset, or -1 when the offset precedes every span.
func SpanAt(spans []WordSpan, offset int) int {
	idx := -1
	for i, span := range spans {
		if span.StartOffset > offset {
			break
		}
		idx = i
	}
	return idx
}
