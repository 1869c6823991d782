// Package transcript holds the transcription data model returned by a
// speech model and the simplified, rounded shape that hyprscribe emits.
package transcript

import (
	"strconv"
	"strings"
)

// Result is the full output of a speech model for one audio file.
// Segments is nil when the model returned no segment list at all.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}

// Segment is one contiguous span of audio with a single utterance.
// Words is nil when the model produced no word alignment for the segment.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []Word
}

// Word carries per-word timing. End is kept from the model but is not emitted.
type Word struct {
	Word  string
	Start float64
	End   float64
}

// Output is the emitted transcription shape.
type Output struct {
	Text     string          `json:"text"`
	Segments []OutputSegment `json:"segments"`
}

type OutputSegment struct {
	Start Seconds      `json:"start"`
	End   Seconds      `json:"end"`
	Text  string       `json:"text"`
	Words []OutputWord `json:"words"`
}

type OutputWord struct {
	Word  string  `json:"word"`
	Start Seconds `json:"start"`
}

// NoFileError is the message emitted when no audio path is given.
const NoFileError = "No file provided"

// ErrorOutput is the structured error object written for user input errors.
type ErrorOutput struct {
	Error string `json:"error"`
}

// Simplify reshapes a model result into the emitted form: text fields are
// trimmed, times are rounded to two decimals and segment order is preserved.
// Absent segment or word lists become empty lists.
func Simplify(r *Result) Output {
	out := Output{Segments: []OutputSegment{}}
	if r == nil {
		return out
	}

	out.Text = strings.TrimSpace(r.Text)
	for _, seg := range r.Segments {
		words := make([]OutputWord, 0, len(seg.Words))
		for _, w := range seg.Words {
			words = append(words, OutputWord{
				Word:  strings.TrimSpace(w.Word),
				Start: Seconds(Round2(w.Start)),
			})
		}
		out.Segments = append(out.Segments, OutputSegment{
			Start: Seconds(Round2(seg.Start)),
			End:   Seconds(Round2(seg.End)),
			Text:  strings.TrimSpace(seg.Text),
			Words: words,
		})
	}
	return out
}

// Round2 rounds to two decimal places using the exact binary value of x,
// with ties going to the even digit.
func Round2(x float64) float64 {
	s := strconv.FormatFloat(x, 'f', 2, 64)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return x
	}
	return v
}
