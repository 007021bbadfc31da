package env

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const DefaultFile = ".env"

type Entry struct {
	Key   string
	Value string
	Line  int
}

type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

type Document struct {
	Entries []Entry
	Skipped []SkippedLine
}

// OpenError means the definition file could not be opened for reading.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

var errIsDir = errors.New("is a directory")

func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Parse reads KEY=VALUE lines of any length. Only the whole line is trimmed;
// key and value are kept exactly as they appear around the first '='.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}

	br := bufio.NewReader(r)
	lineN := 0
	for {
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read line %d: %w", lineN+1, err)
		}
		if raw != "" {
			lineN++
			doc.add(lineN, raw)
		}
		if err == io.EOF {
			return doc, nil
		}
	}
}

func (d *Document) add(lineN int, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		d.Skipped = append(d.Skipped, SkippedLine{Line: lineN, Text: line, Reason: `missing "="`})
		return
	}
	d.Entries = append(d.Entries, Entry{Key: key, Value: value, Line: lineN})
}

// ParseFile parses the file at path. Failures to open it, including path
// naming a directory, are returned as *OpenError.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &OpenError{Path: path, Err: errIsDir}
	}

	return Parse(f)
}
