package trec

import (
	"io"
	"os"
	"sort"

	"github.com/hscells/trecresults"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

// ReadJudgments reads a qrels file (topic iter docid rel).
func ReadJudgments(path string) (*Judgments, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.MissingResourceError(path, err)
	}
	defer f.Close()

	return ParseJudgments(path, f)
}

// ParseJudgments is ReadJudgments over a reader. Blank lines are ignored;
// any other line must hold exactly four fields with an integer grade.
func ParseJudgments(name string, r io.Reader) (*Judgments, error) {
	body, err := nonBlank(name, r)
	if err != nil {
		return nil, err
	}
	qf, err := trecresults.QrelsFromReader(body)
	if err != nil {
		return nil, apperrors.MalformedFileError(name, err)
	}
	return judgmentsFrom(qf.Qrels), nil
}

// judgmentsFrom copies parsed qrels into a Judgments in topic then
// document order.
func judgmentsFrom(parsed map[string]trecresults.Qrels) *Judgments {
	topics := make([]string, 0, len(parsed))
	for topic := range parsed {
		topics = append(topics, topic)
	}
	SortIDs(topics)

	j := NewJudgments()
	for _, topic := range topics {
		docs := parsed[topic]
		ids := make([]string, 0, len(docs))
		for docID := range docs {
			ids = append(ids, docID)
		}
		sort.Strings(ids)
		for _, docID := range ids {
			j.Set(topic, docID, int(docs[docID].Score))
		}
	}
	return j
}
