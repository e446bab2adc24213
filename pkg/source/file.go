package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// File is a LineSource over an uncompressed file. It remembers the byte
// offset of every CheckpointEvery-th line it passes, so seeking backwards
// costs at most CheckpointEvery line reads.
type File struct {
	file        *os.File
	lines       lineReader
	offset      int64   // byte offset of the line under the cursor
	checkpoints []int64 // checkpoints[k] is the offset of line k*every
	every       int
}

// NewFile opens an uncompressed file source
func NewFile(cfg Config) (*File, error) {
	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	every := cfg.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}

	return &File{
		file:        file,
		lines:       lineReader{r: bufio.NewReaderSize(file, 64*1024)},
		checkpoints: []int64{0},
		every:       every,
	}, nil
}

// Next returns the line under the cursor and advances.
func (f *File) Next() (string, error) {
	if f.file == nil {
		return "", ErrClosed
	}
	s, err := f.lines.next()
	if err != nil {
		return "", err
	}
	f.offset += int64(len(s))
	if f.lines.line%f.every == 0 && f.lines.line/f.every == len(f.checkpoints) {
		f.checkpoints = append(f.checkpoints, f.offset)
	}
	return s, nil
}

// EOF reports whether all lines have been read.
func (f *File) EOF() bool {
	if f.file == nil {
		return true
	}
	return f.lines.eof()
}

// Line returns the index of the next line to be read.
func (f *File) Line() int {
	return f.lines.line
}

// Seek moves the cursor to the given line, starting from the closest known
// checkpoint at or before it.
func (f *File) Seek(line int) error {
	if f.file == nil {
		return ErrClosed
	}
	if line < 0 {
		return fmt.Errorf("%w: line %d", ErrSeekBeyondEnd, line)
	}
	if line == f.lines.line {
		return nil
	}

	k := line / f.every
	if k >= len(f.checkpoints) {
		k = len(f.checkpoints) - 1
	}
	start := k * f.every

	// Reading on from the cursor beats rewinding to an older checkpoint.
	if f.lines.line < start || f.lines.line > line {
		if _, err := f.file.Seek(f.checkpoints[k], io.SeekStart); err != nil {
			return fmt.Errorf("seek log: %w", err)
		}
		f.lines.r.Reset(f.file) // Reset to clear buffer
		f.lines.line = start
		f.offset = f.checkpoints[k]
	}

	for f.lines.line < line {
		if _, err := f.Next(); err != nil {
			if err == io.EOF {
				return fmt.Errorf("%w: line %d", ErrSeekBeyondEnd, line)
			}
			return err
		}
	}
	return nil
}

// Offset returns the byte offset of the line under the cursor
func (f *File) Offset() int64 {
	return f.offset
}

// Close closes the file
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
