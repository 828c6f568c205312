package trec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// lineFunc handles one non-blank line split into fields.
type lineFunc func(lineNo int, fields []string) error

// readFile opens path and feeds its lines to fn.
func readFile(path string, split func(string) []string, fn lineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.MissingResourceError(path, err)
	}
	defer f.Close()

	return scan(path, f, split, fn)
}

// scan feeds every non-blank line of r to fn. name identifies r in errors.
func scan(name string, r io.Reader, split func(string) []string, fn lineFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(lineNo, split(line)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return apperrors.InternalError(fmt.Sprintf("reading %s", name), err)
	}
	return nil
}

// nonBlank buffers r without its blank lines, for parsers that reject them.
func nonBlank(name string, r io.Reader) (io.Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var buf bytes.Buffer
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.InternalError(fmt.Sprintf("reading %s", name), err)
	}
	return &buf, nil
}

// parseScore parses a finite score field.
func parseScore(name string, lineNo int, what, field string) (float64, error) {
	score, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, apperrors.MalformedInputError(name, lineNo,
			fmt.Sprintf("%s %q is not a number", what, field))
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, apperrors.MalformedInputError(name, lineNo,
			fmt.Sprintf("%s %q is not finite", what, field))
	}
	return score, nil
}

// expectFields returns a malformed-input error unless fields has n entries.
func expectFields(name string, lineNo int, fields []string, n int) error {
	if len(fields) != n {
		return apperrors.MalformedInputError(name, lineNo,
			fmt.Sprintf("expected %d fields, got %d", n, len(fields)))
	}
	return nil
}

// splitRegistry splits a run-registry line into at most registryFields
// fields; extra colons stay in the last field.
func splitRegistry(line string) []string {
	return strings.SplitN(line, ":", registryFields)
}
