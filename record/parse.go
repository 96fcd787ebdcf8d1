package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	// startMarkerRegex matches the line that opens a record ("!ID 0000001").
	startMarkerRegex = regexp.MustCompile(`^!ID\s+(\S*)\s*$`)

	// fieldLineRegex matches a field line ("!v010!content").
	fieldLineRegex = regexp.MustCompile(`^!v(\d+)!(.*)$`)
)

// maxLineSize bounds a single field line; paragraph fields carry whole HTML
// fragments.
const maxLineSize = 16 * 1024 * 1024

// Parse reads every record from r in input order.
// A nil reader yields no records and no error.
func Parse(r io.Reader) ([]*Record, error) {
	if r == nil {
		return nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []*Record
	var current *Record
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := startMarkerRegex.FindStringSubmatch(line); m != nil {
			current = New()
			current.id = m[1]
			records = append(records, current)
			continue
		}

		if current == nil {
			continue
		}

		m := fieldLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		current.add(Field{Tag: m[1], Subfields: ParseSubfields(m[2])})
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("reading records: %w", err)
	}

	return records, nil
}

// ParseString is Parse over an in-memory export.
func ParseString(s string) []*Record {
	records, _ := Parse(strings.NewReader(s))
	return records
}

// ReadFile parses the records stored at path. A missing file yields no
// records and no error.
func ReadFile(path string) (records []*Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening record file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing record file: %w", cerr)
		}
	}()

	return Parse(f)
}

// Filter returns the records whose type (read from tag) equals recType.
func Filter(records []*Record, tag, recType string) []*Record {
	var out []*Record
	for _, r := range records {
		if r.RecTypeAt(tag) == recType {
			out = append(out, r)
		}
	}
	return out
}
