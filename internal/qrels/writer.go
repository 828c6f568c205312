package qrels

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ricesearch/gloo/internal/trec"
)

// Write emits the set in the format of its mode: "topic 0 docid rel" for
// Collapsed, annotated pool lines for Provenance.
func Write(w io.Writer, s *Set) error {
	if s.Mode() == Provenance {
		return trec.WritePool(w, s.Annotated())
	}
	return WriteQrels(w, s.Qrels())
}

// WriteQrels writes trec_eval-compatible qrels lines.
func WriteQrels(w io.Writer, qrels []Qrel) error {
	bw := bufio.NewWriter(w)
	for _, q := range qrels {
		if _, err := fmt.Fprintf(bw, "%s 0 %s %d\n", q.Topic, q.DocID, q.Relevance); err != nil {
			return err
		}
	}
	return bw.Flush()
}
