// Package trec holds the data model shared by the pooling tools and the
// readers and writers for the whitespace-delimited files they exchange.
package trec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Unjudged is the relevance recorded for a pooled document that has no
// judgment.
const Unjudged = -1

// DefaultDepth is the number of documents a run contributes per topic.
const DefaultDepth = 100

// Result is one (document, score) pair from a run's ranked output.
type Result struct {
	DocID string
	Score float64
}

// Contributor designates a run that contributes to the pool.
type Contributor struct {
	Run   string
	Depth int
}

// PoolEntry is one contributed document, annotated with its judgment.
type PoolEntry struct {
	Topic     string  `json:"topic"`
	DocID     string  `json:"docid"`
	Run       string  `json:"run"`
	Group     string  `json:"group"`
	Rank      int     `json:"rank"` // 1-based
	Score     float64 `json:"score"`
	Relevance int     `json:"relevance"`

	// ScoreText is the score as it appeared in a pool file, if read from one.
	ScoreText string `json:"-"`
}

// Judgments maps topic -> document -> relevance grade.
type Judgments struct {
	topics *OrderedMap[string, *OrderedMap[string, int]]
}

// NewJudgments creates an empty judgment set.
func NewJudgments() *Judgments {
	return &Judgments{
		topics: NewOrderedMap[string, *OrderedMap[string, int]](),
	}
}

// Set records the grade for a document. A later grade replaces an earlier one.
func (j *Judgments) Set(topic, docID string, relevance int) {
	docs := j.topics.GetOrInsert(topic, NewOrderedMap[string, int])
	docs.Set(docID, relevance)
}

// Lookup returns the grade for a document, if judged.
func (j *Judgments) Lookup(topic, docID string) (int, bool) {
	docs, ok := j.topics.Get(topic)
	if !ok {
		return 0, false
	}
	return docs.Get(docID)
}

// Relevance returns the grade for a document, or Unjudged.
func (j *Judgments) Relevance(topic, docID string) int {
	if rel, ok := j.Lookup(topic, docID); ok {
		return rel
	}
	return Unjudged
}

// Topics returns the judged topics in insertion order, which is topic
// order for judgments read from a file.
func (j *Judgments) Topics() []string {
	return j.topics.Keys()
}

// Len returns the number of judgments.
func (j *Judgments) Len() int {
	n := 0
	for _, topic := range j.topics.Keys() {
		docs, _ := j.topics.Get(topic)
		n += docs.Len()
	}
	return n
}

// Registry records which group each run belongs to.
type Registry struct {
	groupOf map[string]string
	runsOf  *OrderedMap[string, []string]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groupOf: make(map[string]string),
		runsOf:  NewOrderedMap[string, []string](),
	}
}

// Add registers run as belonging to group. Registering a run twice with
// the same group is a no-op; with a different group it is an error.
func (r *Registry) Add(run, group string) error {
	if existing, ok := r.groupOf[run]; ok {
		if existing != group {
			return fmt.Errorf("run %s already belongs to group %s", run, existing)
		}
		return nil
	}
	r.groupOf[run] = group
	runs, _ := r.runsOf.Get(group)
	r.runsOf.Set(group, append(runs, run))
	return nil
}

// Group returns the group of run.
func (r *Registry) Group(run string) (string, bool) {
	g, ok := r.groupOf[run]
	return g, ok
}

// Runs returns every registered run, sorted.
func (r *Registry) Runs() []string {
	runs := make([]string, 0, len(r.groupOf))
	for run := range r.groupOf {
		runs = append(runs, run)
	}
	SortIDs(runs)
	return runs
}

// Groups returns every group, sorted.
func (r *Registry) Groups() []string {
	groups := r.runsOf.Keys()
	SortIDs(groups)
	return groups
}

// RunsOf returns the runs of group, sorted.
func (r *Registry) RunsOf(group string) []string {
	runs, _ := r.runsOf.Get(group)
	out := make([]string, len(runs))
	copy(out, runs)
	SortIDs(out)
	return out
}

// Len returns the number of registered runs.
func (r *Registry) Len() int {
	return len(r.groupOf)
}

// ScoreTable maps measure -> run -> score.
type ScoreTable struct {
	measures *OrderedMap[string, *OrderedMap[string, float64]]
}

// NewScoreTable creates an empty table.
func NewScoreTable() *ScoreTable {
	return &ScoreTable{
		measures: NewOrderedMap[string, *OrderedMap[string, float64]](),
	}
}

// Set records a score.
func (t *ScoreTable) Set(measure, run string, score float64) {
	runs := t.measures.GetOrInsert(measure, NewOrderedMap[string, float64])
	runs.Set(run, score)
}

// Score returns the score of run for measure.
func (t *ScoreTable) Score(measure, run string) (float64, bool) {
	runs, ok := t.measures.Get(measure)
	if !ok {
		return 0, false
	}
	return runs.Get(run)
}

// Measures returns the measures in load order.
func (t *ScoreTable) Measures() []string {
	return t.measures.Keys()
}

// Runs returns the runs scored for measure, in load order.
func (t *ScoreTable) Runs(measure string) []string {
	runs, ok := t.measures.Get(measure)
	if !ok {
		return nil
	}
	return runs.Keys()
}

// Clone returns a deep copy of the table.
func (t *ScoreTable) Clone() *ScoreTable {
	out := NewScoreTable()
	for _, m := range t.measures.Keys() {
		runs, _ := t.measures.Get(m)
		for _, run := range runs.Keys() {
			s, _ := runs.Get(run)
			out.Set(m, run, s)
		}
	}
	return out
}

// CompareIDs orders identifiers numerically when both are integers and
// lexicographically otherwise.
func CompareIDs(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// SortIDs sorts identifiers in place using CompareIDs.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareIDs(ids[i], ids[j]) < 0
	})
}

// FormatScore renders a score the way the pool files carry it: shortest
// round-trip representation, always with a decimal point.
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
