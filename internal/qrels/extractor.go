// Package qrels derives depth-k relevance judgment sets from an annotated pool.
package qrels

import (
	"sort"

	"github.com/ricesearch/gloo/internal/trec"
)

// Mode selects how surviving pool entries are emitted.
type Mode int

const (
	// Collapsed keeps one relevance value per (topic, document).
	Collapsed Mode = iota
	// Provenance keeps every contributing (run, group, rank, score, rel) tuple.
	Provenance
)

// Options configures an extraction.
type Options struct {
	// Depth is the rank cutoff (1-based). Entries with a larger rank are dropped.
	Depth int

	// Runs and Groups are allow-lists; nil admits everything.
	Runs   trec.IDSet
	Groups trec.IDSet

	// MinRelevance is carried through for callers but not used to filter.
	MinRelevance string

	Mode Mode
}

// Qrel is one collapsed judgment.
type Qrel struct {
	Topic     string `json:"topic"`
	DocID     string `json:"docid"`
	Relevance int    `json:"relevance"`
}

// Set is an extracted qrels set.
type Set struct {
	mode   Mode
	topics *trec.OrderedMap[string, *trec.OrderedMap[string, []trec.PoolEntry]]
}

// Extract filters pool entries by allow-lists and depth.
//
// In Collapsed mode the relevance of the last surviving entry for a
// document wins.
func Extract(entries []trec.PoolEntry, opts Options) *Set {
	set := &Set{
		mode:   opts.Mode,
		topics: trec.NewOrderedMap[string, *trec.OrderedMap[string, []trec.PoolEntry]](),
	}

	for _, e := range entries {
		if !opts.admits(e) {
			continue
		}
		docs := set.topics.GetOrInsert(e.Topic, trec.NewOrderedMap[string, []trec.PoolEntry])
		if opts.Mode == Collapsed {
			docs.Set(e.DocID, []trec.PoolEntry{e})
			continue
		}
		existing, _ := docs.Get(e.DocID)
		docs.Set(e.DocID, append(existing, e))
	}
	return set
}

func (o Options) admits(e trec.PoolEntry) bool {
	if o.Runs != nil && !o.Runs.Contains(e.Run) {
		return false
	}
	if o.Groups != nil && !o.Groups.Contains(e.Group) {
		return false
	}
	return e.Rank <= o.Depth
}

// Mode returns the mode the set was extracted with.
func (s *Set) Mode() Mode {
	return s.mode
}

// Topics returns the topics in emission order.
func (s *Set) Topics() []string {
	return s.topics.SortedKeys(func(a, b string) bool {
		return trec.CompareIDs(a, b) < 0
	})
}

// Documents returns the documents of topic in emission order.
func (s *Set) Documents(topic string) []string {
	docs, ok := s.topics.Get(topic)
	if !ok {
		return nil
	}
	ids := docs.Keys()
	sort.Strings(ids)
	return ids
}

// Entries returns the surviving pool entries for a document in the order
// they were processed. In Collapsed mode this is the single winning entry.
func (s *Set) Entries(topic, docID string) []trec.PoolEntry {
	docs, ok := s.topics.Get(topic)
	if !ok {
		return nil
	}
	entries, _ := docs.Get(docID)
	return entries
}

// Qrels returns the collapsed judgments in emission order. For a
// Provenance set the last surviving entry of each document is used.
func (s *Set) Qrels() []Qrel {
	var out []Qrel
	for _, topic := range s.Topics() {
		for _, doc := range s.Documents(topic) {
			entries := s.Entries(topic, doc)
			out = append(out, Qrel{
				Topic:     topic,
				DocID:     doc,
				Relevance: entries[len(entries)-1].Relevance,
			})
		}
	}
	return out
}

// Annotated returns every surviving entry in emission order.
func (s *Set) Annotated() []trec.PoolEntry {
	var out []trec.PoolEntry
	for _, topic := range s.Topics() {
		for _, doc := range s.Documents(topic) {
			out = append(out, s.Entries(topic, doc)...)
		}
	}
	return out
}

// Len returns the number of (topic, document) pairs.
func (s *Set) Len() int {
	n := 0
	for _, topic := range s.topics.Keys() {
		docs, _ := s.topics.Get(topic)
		n += docs.Len()
	}
	return n
}
