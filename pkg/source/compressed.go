package source

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec of a compressed log file.
type Compression int

const (
	Gzip Compression = iota
	Zstd
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

// Compressed is a LineSource over a gzip, zstd or lz4 frame file.
// Compressed streams cannot seek, so moving the cursor backwards restarts decompression from the
// beginning of the file.
type Compressed struct {
	path        string
	compression Compression
	file        *os.File
	stream      io.Closer
	lines       lineReader
}

// NewCompressed opens a compressed file source
func NewCompressed(cfg Config, compression Compression) (*Compressed, error) {
	c := &Compressed{path: cfg.Path, compression: compression}
	if err := c.reopen(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Compressed) reopen() error {
	c.closeStream()

	file, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	var r io.Reader
	switch c.compression {
	case Gzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return fmt.Errorf("open %s stream: %w", c.compression, err)
		}
		c.stream = gz
		r = gz
	case Zstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return fmt.Errorf("open %s stream: %w", c.compression, err)
		}
		c.stream = zstdCloser{dec}
		r = dec
	case LZ4:
		c.stream = nil
		r = lz4.NewReader(file)
	default:
		file.Close()
		return fmt.Errorf("unsupported compression %s", c.compression)
	}

	c.file = file
	c.lines = lineReader{r: bufio.NewReaderSize(r, 64*1024)}
	return nil
}

// Next returns the line under the cursor and advances.
func (c *Compressed) Next() (string, error) {
	if c.file == nil {
		return "", ErrClosed
	}
	return c.lines.next()
}

// EOF reports whether all lines have been read.
func (c *Compressed) EOF() bool {
	if c.file == nil {
		return true
	}
	return c.lines.eof()
}

// Line returns the index of the next line to be read.
func (c *Compressed) Line() int {
	return c.lines.line
}

// Seek moves the cursor to the given line.
func (c *Compressed) Seek(line int) error {
	if c.file == nil {
		return ErrClosed
	}
	if line < 0 {
		return fmt.Errorf("%w: line %d", ErrSeekBeyondEnd, line)
	}
	if line < c.lines.line {
		if err := c.reopen(); err != nil {
			return err
		}
	}
	for c.lines.line < line {
		if _, err := c.lines.next(); err != nil {
			if err == io.EOF {
				return fmt.Errorf("%w: line %d", ErrSeekBeyondEnd, line)
			}
			return err
		}
	}
	return nil
}

// Close closes the stream and the file
func (c *Compressed) Close() error {
	if c.file == nil {
		return nil
	}
	return c.closeStream()
}

func (c *Compressed) closeStream() error {
	var err error
	if c.stream != nil {
		err = c.stream.Close()
		c.stream = nil
	}
	if c.file != nil {
		if cerr := c.file.Close(); err == nil {
			err = cerr
		}
		c.file = nil
	}
	return err
}

type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}
