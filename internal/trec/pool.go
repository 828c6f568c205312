package trec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

// ReadPool reads an annotated pool file
// (topic docid run group rank score rel).
func ReadPool(path string) ([]PoolEntry, error) {
	var entries []PoolEntry
	if err := readFile(path, strings.Fields, poolLine(path, &entries)); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParsePool is ReadPool over a reader.
func ParsePool(name string, r io.Reader) ([]PoolEntry, error) {
	var entries []PoolEntry
	if err := scan(name, r, strings.Fields, poolLine(name, &entries)); err != nil {
		return nil, err
	}
	return entries, nil
}

func poolLine(name string, entries *[]PoolEntry) lineFunc {
	return func(lineNo int, fields []string) error {
		if err := expectFields(name, lineNo, fields, poolFields); err != nil {
			return err
		}
		rank, err := strconv.Atoi(fields[4])
		if err != nil {
			return apperrors.MalformedInputError(name, lineNo,
				fmt.Sprintf("rank %q is not an integer", fields[4]))
		}
		score, err := parseScore(name, lineNo, "score", fields[5])
		if err != nil {
			return err
		}
		rel, err := strconv.Atoi(fields[6])
		if err != nil {
			return apperrors.MalformedInputError(name, lineNo,
				fmt.Sprintf("relevance %q is not an integer", fields[6]))
		}
		*entries = append(*entries, PoolEntry{
			Topic:     fields[0],
			DocID:     fields[1],
			Run:       fields[2],
			Group:     fields[3],
			Rank:      rank,
			Score:     score,
			ScoreText: fields[5],
			Relevance: rel,
		})
		return nil
	}
}

// PoolLine formats an entry as an annotated pool line. A score read from a
// pool file is written back as it was read.
func PoolLine(e PoolEntry) string {
	score := e.ScoreText
	if score == "" {
		score = FormatScore(e.Score)
	}
	return fmt.Sprintf("%s %s %s %s %d %s %d",
		e.Topic, e.DocID, e.Run, e.Group, e.Rank, score, e.Relevance)
}

// WritePool writes entries as annotated pool lines.
func WritePool(w io.Writer, entries []PoolEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, PoolLine(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
