package source

import (
	"fmt"
	"io"
	"strings"
)

// Memory is a LineSource over an in-memory string.
type Memory struct {
	lines  []string
	pos    int
	closed bool
}

// NewMemory splits text into lines, keeping the terminators.
func NewMemory(text string) *Memory {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &Memory{lines: lines}
}

func (m *Memory) Next() (string, error) {
	if m.closed {
		return "", ErrClosed
	}
	if m.pos >= len(m.lines) {
		return "", io.EOF
	}
	s := m.lines[m.pos]
	m.pos++
	return s, nil
}

func (m *Memory) EOF() bool {
	return m.closed || m.pos >= len(m.lines)
}

func (m *Memory) Seek(line int) error {
	if m.closed {
		return ErrClosed
	}
	if line < 0 || line > len(m.lines) {
		return fmt.Errorf("%w: line %d", ErrSeekBeyondEnd, line)
	}
	m.pos = line
	return nil
}

func (m *Memory) Line() int {
	return m.pos
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}
