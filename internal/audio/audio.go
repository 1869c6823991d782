// Package audio inspects audio files before they are handed to a backend.
// It never rewrites audio; decoding and resampling stay with the backend.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-audio/wav"
)

// WhisperSampleRate is the sample rate whisper models are trained on.
const WhisperSampleRate = 16000

// Info describes an audio file
type Info struct {
	Path        string
	Size        int64
	ContentType string // e.g. "audio/wav", "audio/mpeg"
	Extension   string // e.g. ".wav"

	// populated for WAV files only
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// IsWAV reports whether the file was recognised as a RIFF/WAVE file
func (i Info) IsWAV() bool {
	return i.SampleRate > 0
}

// Filename returns the base name, used as the upload name for HTTP backends
func (i Info) Filename() string {
	return filepath.Base(i.Path)
}

// Probe inspects the file at path. It fails if the file does not exist, is
// a directory or is empty.
func Probe(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat audio file: %w", err)
	}
	if st.IsDir() {
		return Info{}, fmt.Errorf("audio path is a directory: %s", path)
	}
	if st.Size() == 0 {
		return Info{}, fmt.Errorf("audio file is empty: %s", path)
	}

	info := Info{Path: path, Size: st.Size()}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("detect audio type: %w", err)
	}
	info.ContentType = contentType(mtype.String())
	info.Extension = mtype.Extension()
	if info.Extension == "" {
		info.Extension = strings.ToLower(filepath.Ext(path))
	}

	if mtype.Is("audio/wav") {
		if err := readWAVHeader(&info); err != nil {
			return Info{}, err
		}
	}

	return info, nil
}

func readWAVHeader(info *Info) error {
	f, err := os.Open(info.Path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid WAV file: %s", info.Path)
	}
	info.SampleRate = int(dec.SampleRate)
	info.Channels = int(dec.NumChans)
	info.BitDepth = int(dec.BitDepth)

	// duration needs the data chunk; a truncated file still has a usable header
	if d, err := dec.Duration(); err == nil {
		info.Duration = d
	}
	return nil
}

// contentType strips mime parameters and falls back to a generic type
func contentType(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	if m == "" || m == "application/octet-stream" || m == "text/plain" {
		return "application/octet-stream"
	}
	return m
}

func (i Info) String() string {
	if i.IsWAV() {
		return fmt.Sprintf("%s (%s, %d Hz, %d ch, %d-bit, %v)", i.Filename(), i.ContentType, i.SampleRate, i.Channels, i.BitDepth, i.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s (%s, %d bytes)", i.Filename(), i.ContentType, i.Size)
}
