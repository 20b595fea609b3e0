package tailer

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader splits a possibly growing stream into lines. A trailing
// fragment without a newline is held until the rest of the line arrives.
type LineReader struct {
	r       *bufio.Reader
	partial strings.Builder
	offset  int64
}

// NewLineReader reads from r. start is the stream position r begins at and
// is only used for Offset.
func NewLineReader(r io.Reader, start int64) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024), offset: start}
}

// Next returns the next complete line with CR/LF trimmed. It returns io.EOF
// when no complete line is available yet; reading again later continues
// where it stopped.
func (lr *LineReader) Next() (string, error) {
	for {
		chunk, err := lr.r.ReadString('\n')
		if chunk != "" {
			lr.partial.WriteString(chunk)
			if strings.HasSuffix(chunk, "\n") {
				return lr.take(), nil
			}
		}
		if err != nil {
			return "", err
		}
	}
}

// Flush returns the held fragment as a final line, if there is one.
func (lr *LineReader) Flush() (string, bool) {
	if lr.partial.Len() == 0 {
		return "", false
	}
	return lr.take(), true
}

// Offset is the stream position just past the last line returned.
func (lr *LineReader) Offset() int64 {
	return lr.offset
}

func (lr *LineReader) take() string {
	raw := lr.partial.String()
	lr.partial.Reset()
	lr.offset += int64(len(raw))
	return strings.TrimRight(raw, "\r\n")
}

// ReadAll calls fn for every line of r, including an unterminated last one.
func ReadAll(r io.Reader, fn func(text string) error) error {
	lr := NewLineReader(r, 0)
	for {
		text, err := lr.Next()
		if err == nil {
			if err := fn(text); err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}
		if text, ok := lr.Flush(); ok {
			return fn(text)
		}
		return nil
	}
}
