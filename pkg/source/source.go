// Package source provides line-addressable, seekable access to log files.
//
// A LineSource behaves like a cursor over the physical lines of a file:
// Next returns the line under the cursor and advances it, Seek moves it to
// any line index, and Line reports where it is. Lines are returned with
// their terminators so multi-line records can be reassembled byte for byte.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultCheckpointEvery is the distance, in lines, between remembered byte
// offsets in a File.
const DefaultCheckpointEvery = 1024

var (
	// ErrSeekBeyondEnd is returned when seeking past the last line.
	ErrSeekBeyondEnd = errors.New("seek beyond end of source")
	// ErrClosed is returned when a closed source is used.
	ErrClosed = errors.New("source is closed")
)

// LineSource is a forward-reading, line-seekable cursor over text lines.
type LineSource interface {
	// Next returns the line under the cursor, including its terminator, and
	// advances the cursor. It returns io.EOF when no lines remain.
	Next() (string, error)
	// EOF reports whether the cursor is past the last line.
	EOF() bool
	// Seek moves the cursor to the 0-based physical line index.
	Seek(line int) error
	// Line returns the index of the line Next would return.
	Line() int
	// Close releases the underlying resources.
	Close() error
}

// Config holds configuration for opening a file source
type Config struct {
	Path            string // Path to the log file
	CheckpointEvery int    // Lines between byte-offset checkpoints (0 = default)
}

// Open opens the file at cfg.Path, transparently decompressing .gz, .zst and
// .lz4 files.
func Open(cfg Config) (LineSource, error) {
	var (
		src LineSource
		err error
	)
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".gz", ".gzip":
		src, err = NewCompressed(cfg, Gzip)
	case ".zst", ".zstd":
		src, err = NewCompressed(cfg, Zstd)
	case ".lz4":
		src, err = NewCompressed(cfg, LZ4)
	default:
		src, err = NewFile(cfg)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// lineReader counts lines read through a buffered reader.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func (l *lineReader) next() (string, error) {
	s, err := l.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && s != "" {
			l.line++
			return s, nil
		}
		if err == io.EOF {
			return "", io.EOF
		}
		return "", fmt.Errorf("read line %d: %w", l.line, err)
	}
	l.line++
	return s, nil
}

func (l *lineReader) eof() bool {
	_, err := l.r.Peek(1)
	return err != nil
}
