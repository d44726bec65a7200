package transcript

import "strings"

// Gap between caption entries (seconds) above which a new sentence is
// assumed even without closing punctuation
const maxSegmentGap = 1.5

var sentenceEndPunct = map[byte]bool{
	'.':  true,
	'?':  true,
	'!':  true,
	'"':  true,
	'\'': true,
	')':  true,
}

// MergeSegments joins raw caption entries into full sentences. Captions come
// back from the provider split on display-line boundaries, so consecutive
// entries are merged until one ends with sentence punctuation or a gap
// larger than maxSegmentGap separates them.
func MergeSegments(raw []Segment) []Segment {
	if len(raw) == 0 {
		return nil
	}

	merged := make([]Segment, 0, len(raw))
	current := Segment{
		Start: raw[0].Start,
		End:   raw[0].End,
		Text:  strings.TrimSpace(raw[0].Text),
	}

	for _, entry := range raw[1:] {
		text := strings.TrimSpace(entry.Text)

		endsSentence := len(current.Text) > 0 && sentenceEndPunct[current.Text[len(current.Text)-1]]
		startsNew := entry.Start > current.End+maxSegmentGap

		if endsSentence || startsNew {
			merged = append(merged, current)
			current = Segment{Start: entry.Start, End: entry.End, Text: text}
			continue
		}

		current.Text += " " + text
		current.End = entry.End
	}

	return append(merged, current)
}
