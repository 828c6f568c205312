package trec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

// IDSet is a set of run or group identifiers.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// ReadList reads one identifier per line.
func ReadList(path string) ([]string, error) {
	var ids []string
	if err := readFile(path, splitWhole, listLine(&ids)); err != nil {
		return nil, err
	}
	return ids, nil
}

// ParseList is ReadList over a reader.
func ParseList(name string, r io.Reader) ([]string, error) {
	var ids []string
	if err := scan(name, r, splitWhole, listLine(&ids)); err != nil {
		return nil, err
	}
	return ids, nil
}

func splitWhole(line string) []string {
	return []string{line}
}

func listLine(ids *[]string) lineFunc {
	return func(_ int, fields []string) error {
		*ids = append(*ids, fields[0])
		return nil
	}
}

// ReadContributors reads the pool-runs list: one run per line, with an
// optional second field overriding defaultDepth for that run. A run listed
// twice keeps its first position and its last depth.
func ReadContributors(path string, defaultDepth int) ([]Contributor, error) {
	var out []Contributor
	index := make(map[string]int)
	err := readFile(path, strings.Fields, func(lineNo int, fields []string) error {
		if len(fields) < 1 || len(fields) > 2 {
			return apperrors.MalformedInputError(path, lineNo,
				fmt.Sprintf("expected 1 or 2 fields, got %d", len(fields)))
		}
		c := Contributor{Run: fields[0], Depth: defaultDepth}
		if len(fields) == 2 {
			d, err := strconv.Atoi(fields[1])
			if err != nil || d < 1 {
				return apperrors.MalformedInputError(path, lineNo,
					fmt.Sprintf("depth %q is not a positive integer", fields[1]))
			}
			c.Depth = d
		}
		if i, ok := index[c.Run]; ok {
			out[i].Depth = c.Depth
			return nil
		}
		index[c.Run] = len(out)
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseTopics expands a topic expression such as "401-450" or
// "401,403,410-412" into topic ids.
func ParseTopics(expr string) ([]string, error) {
	var topics []string
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			topics = append(topics, part)
			continue
		}
		from, err1 := strconv.Atoi(strings.TrimSpace(lo))
		to, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil || from > to {
			return nil, apperrors.ConfigError(fmt.Sprintf("invalid topic range %q", part))
		}
		for t := from; t <= to; t++ {
			topics = append(topics, strconv.Itoa(t))
		}
	}
	if len(topics) == 0 {
		return nil, apperrors.ConfigError("empty topic list")
	}
	return topics, nil
}
