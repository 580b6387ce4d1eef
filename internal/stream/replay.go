package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Replay reads samples from a recording: one float per line, blank lines and
// lines starting with '#' skipped. When Loop is set the file restarts on
// exhaustion instead of returning io.EOF.
type Replay struct {
	Path string
	Loop bool

	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// NewReplay creates a Replay source over the given recording file.
func NewReplay(path string, loop bool) *Replay {
	return &Replay{Path: path, Loop: loop}
}

// Open opens the recording.
func (r *Replay) Open() error {
	file, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("open recording %s: %w", r.Path, err)
	}
	r.file = file
	r.scanner = bufio.NewScanner(file)
	r.line = 0
	return nil
}

// Read fills block with the next samples from the recording.
func (r *Replay) Read(block []float64) error {
	for i := range block {
		sample, err := r.next()
		if err != nil {
			return err
		}
		block[i] = sample
	}
	return nil
}

func (r *Replay) next() (float64, error) {
	for {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, fmt.Errorf("read recording %s: %w", r.Path, err)
			}
			if !r.Loop {
				return 0, io.EOF
			}
			if err := r.rewind(); err != nil {
				return 0, err
			}
			continue
		}
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		sample, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("recording %s line %d: %w", r.Path, r.line, err)
		}
		return sample, nil
	}
}

func (r *Replay) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind recording %s: %w", r.Path, err)
	}
	r.scanner = bufio.NewScanner(r.file)
	r.line = 0
	return nil
}

// Close closes the recording.
func (r *Replay) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
