package transcriber

import (
	"strings"

	"github.com/leonardotrapani/hyprscribe/internal/transcript"
)

// assignWords distributes a flat, time-ordered word list over segments.
// A word goes to the first segment (at or after the previous word's) whose
// end is past the word's start; words past the last segment go to it.
// Every segment gets a non-nil word list.
func assignWords(segments []transcript.Segment, words []transcript.Word) {
	if len(segments) == 0 {
		return
	}
	for i := range segments {
		segments[i].Words = []transcript.Word{}
	}

	i := 0
	for _, w := range words {
		for i < len(segments)-1 && w.Start >= segments[i].End {
			i++
		}
		segments[i].Words = append(segments[i].Words, w)
	}
}

// segmentBuilder accumulates words into sentence-sized segments for
// backends that only return a flat word list.
type segmentBuilder struct {
	segments []transcript.Segment
	current  *transcript.Segment
	text     strings.Builder
}

func newSegmentBuilder() *segmentBuilder {
	return &segmentBuilder{segments: []transcript.Segment{}}
}

// addSpacing appends inter-word text to the open segment, if any
func (b *segmentBuilder) addSpacing(s string) {
	if b.current != nil {
		b.text.WriteString(s)
	}
}

func (b *segmentBuilder) addWord(w transcript.Word) {
	if b.current == nil {
		b.current = &transcript.Segment{Start: w.Start, Words: []transcript.Word{}}
		b.text.Reset()
	}
	b.text.WriteString(w.Word)
	b.current.Words = append(b.current.Words, w)
	b.current.End = w.End
	if endsSentence(w.Word) {
		b.flush()
	}
}

func (b *segmentBuilder) flush() {
	if b.current == nil {
		return
	}
	b.current.Text = b.text.String()
	b.segments = append(b.segments, *b.current)
	b.current = nil
}

func (b *segmentBuilder) result() []transcript.Segment {
	b.flush()
	return b.segments
}

func endsSentence(word string) bool {
	w := strings.TrimRight(strings.TrimSpace(word), `"')]»”’`)
	if w == "" {
		return false
	}
	switch w[len(w)-1] {
	case '.', '?', '!':
		return true
	}
	return strings.HasSuffix(w, "…") || strings.HasSuffix(w, "。") || strings.HasSuffix(w, "？") || strings.HasSuffix(w, "！")
}
