package trec

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hscells/trecresults"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

// Template placeholders.
const (
	RunPlaceholder   = "RUNTAG"
	TopicPlaceholder = "TOPIC"
)

// ResultPathFunc locates the result file of a run for one topic.
type ResultPathFunc func(run, topic string) string

// RunPathFunc locates a per-run file.
type RunPathFunc func(run string) string

// ResultTemplate returns a ResultPathFunc that substitutes RUNTAG and
// TOPIC in template, e.g. "results/RUNTAG/tTOPIC".
func ResultTemplate(template string) ResultPathFunc {
	return func(run, topic string) string {
		p := strings.ReplaceAll(template, RunPlaceholder, run)
		return strings.ReplaceAll(p, TopicPlaceholder, topic)
	}
}

// RunTemplate returns a RunPathFunc that substitutes RUNTAG in pattern
// and places the file under dir.
func RunTemplate(dir, pattern string) RunPathFunc {
	return func(run string) string {
		return filepath.Join(dir, strings.ReplaceAll(pattern, RunPlaceholder, run))
	}
}

// ResultLoader loads one run's ranked output for a topic.
type ResultLoader interface {
	Load(ctx context.Context, run, topic string) ([]Result, error)
}

// FileResultLoader reads per-run, per-topic result files.
type FileResultLoader struct {
	Path ResultPathFunc
}

// NewFileResultLoader creates a loader over the files named by path.
func NewFileResultLoader(path ResultPathFunc) *FileResultLoader {
	return &FileResultLoader{Path: path}
}

// Load implements ResultLoader.
func (l *FileResultLoader) Load(ctx context.Context, run, topic string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := l.Path(run, topic)
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.MissingResourceError(path, err)
	}
	defer f.Close()

	return ParseResults(path, topic, f)
}

// ParseResults reads result lines (topic iter docid rank score runtag) for
// one topic and returns its (document, score) pairs. A line
// for any other topic, a repeated document or a non-finite score makes the
// file malformed.
func ParseResults(name, topic string, r io.Reader) ([]Result, error) {
	body, err := nonBlank(name, r)
	if err != nil {
		return nil, err
	}
	rf, err := trecresults.ResultsFromReader(body)
	if err != nil {
		return nil, apperrors.MalformedFileError(name, err)
	}

	for other := range rf.Results {
		if other != topic {
			return nil, apperrors.MalformedFileError(name,
				fmt.Errorf("holds results for topic %s, want only %s", other, topic))
		}
	}

	list := rf.Results[topic]
	results := make([]Result, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, res := range list {
		if seen[res.DocId] {
			return nil, apperrors.MalformedFileError(name,
				fmt.Errorf("document %s appears more than once", res.DocId))
		}
		seen[res.DocId] = true
		score := float64(res.Score)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, apperrors.MalformedFileError(name,
				fmt.Errorf("document %s has non-finite score %v", res.DocId, score))
		}
		results = append(results, Result{DocID: res.DocId, Score: score})
	}
	return results, nil
}
