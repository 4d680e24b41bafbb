package kilo

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Row is a single line of text shown on screen.
type Row struct {
	Chars []byte
}

// Size returns the length of the row in bytes.
func (r *Row) Size() int {
	if r == nil {
		return 0
	}
	return len(r.Chars)
}

// OpenFile loads the first line of path. It returns a nil row for an empty
// file.
func OpenFile(path string) (*Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fatal("fopen", err)
	}
	defer f.Close()

	row, err := ReadFirstLine(f)
	if err != nil {
		return nil, fatal("getline", errors.Wrap(err, path))
	}
	return row, nil
}

// ReadFirstLine reads up to and including the first newline and strips any
// trailing '\n' and '\r' bytes.
func ReadFirstLine(r io.Reader) (*Row, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(line) == 0 {
		return nil, nil
	}

	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	chars := make([]byte, n)
	copy(chars, line[:n])
	return &Row{Chars: chars}, nil
}
