package trec

import (
	"io"
	"strings"
)

const measureFields = 3

// AllTopics is the topic column value of an aggregate evaluator row.
const AllTopics = "all"

// textMeasures carry strings rather than scores in evaluator output.
var textMeasures = map[string]bool{
	"runid":     true,
	"relstring": true,
}

// ReadMeasures reads one run's evaluator output (measure topic score)
// and returns the aggregate ("all") scores by measure.
func ReadMeasures(path string) (*OrderedMap[string, float64], error) {
	scores := NewOrderedMap[string, float64]()
	if err := readFile(path, strings.Fields, measureLine(path, scores)); err != nil {
		return nil, err
	}
	return scores, nil
}

// ParseMeasures is ReadMeasures over a reader.
func ParseMeasures(name string, r io.Reader) (*OrderedMap[string, float64], error) {
	scores := NewOrderedMap[string, float64]()
	if err := scan(name, r, strings.Fields, measureLine(name, scores)); err != nil {
		return nil, err
	}
	return scores, nil
}

func measureLine(name string, scores *OrderedMap[string, float64]) lineFunc {
	return func(lineNo int, fields []string) error {
		if err := expectFields(name, lineNo, fields, measureFields); err != nil {
			return err
		}
		measure, topic := fields[0], fields[1]
		if topic != AllTopics || textMeasures[measure] {
			return nil
		}
		score, err := parseScore(name, lineNo, measure+" score", fields[2])
		if err != nil {
			return err
		}
		scores.Set(measure, score)
		return nil
	}
}

// LoadScoreTable reads the evaluator output of every run and assembles a
// measure -> run -> score table.
func LoadScoreTable(runs []string, path RunPathFunc) (*ScoreTable, error) {
	table := NewScoreTable()
	for _, run := range runs {
		scores, err := ReadMeasures(path(run))
		if err != nil {
			return nil, err
		}
		for _, m := range scores.Keys() {
			s, _ := scores.Get(m)
			table.Set(m, run, s)
		}
	}
	return table, nil
}
