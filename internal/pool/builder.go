// Package pool assembles judgment-annotated pools from the ranked output
// of contributing runs.
package pool

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
	"github.com/ricesearch/gloo/internal/pkg/logger"
	"github.com/ricesearch/gloo/internal/trec"
)

// Builder merges the top-ranked documents of every contributor into the pool.
type Builder struct {
	judgments    *trec.Judgments
	registry     *trec.Registry
	contributors []trec.Contributor
	loader       trec.ResultLoader
	log          *logger.Logger
}

// NewBuilder creates a pool builder.
func NewBuilder(judgments *trec.Judgments, registry *trec.Registry, contributors []trec.Contributor, loader trec.ResultLoader, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Discard()
	}
	return &Builder{
		judgments:    judgments,
		registry:     registry,
		contributors: contributors,
		loader:       loader,
		log:          log,
	}
}

// Build returns the pool entries for every topic, in topic order, then
// contributor order, then rank. Any failure aborts the whole build.
func (b *Builder) Build(ctx context.Context, topics []string) ([]trec.PoolEntry, error) {
	groups, err := b.resolveGroups()
	if err != nil {
		return nil, err
	}

	var entries []trec.PoolEntry
	for _, topic := range topics {
		tlog := b.log.WithTopic(topic)
		for i, c := range b.contributors {
			results, err := b.loader.Load(ctx, c.Run, topic)
			if err != nil {
				return nil, fmt.Errorf("loading %s for topic %s: %w", c.Run, topic, err)
			}

			top := Truncate(results, c.Depth)
			for rank, r := range top {
				entries = append(entries, trec.PoolEntry{
					Topic:     topic,
					DocID:     r.DocID,
					Run:       c.Run,
					Group:     groups[i],
					Rank:      rank + 1,
					Score:     r.Score,
					Relevance: b.judgments.Relevance(topic, r.DocID),
				})
			}
			tlog.WithRun(c.Run, groups[i]).Debug("pooled run",
				"retrieved", len(results), "contributed", len(top))
		}
	}

	b.log.Info("pool built", "topics", len(topics), "runs", len(b.contributors), "entries", len(entries))
	return entries, nil
}

// resolveGroups checks every contributor before any file is read.
func (b *Builder) resolveGroups() ([]string, error) {
	groups := make([]string, len(b.contributors))
	for i, c := range b.contributors {
		if c.Depth < 1 {
			return nil, apperrors.ConfigError(fmt.Sprintf("run %s has pool depth %d", c.Run, c.Depth)).
				WithDetail("run", c.Run)
		}
		g, ok := b.registry.Group(c.Run)
		if !ok {
			return nil, apperrors.ConfigError(fmt.Sprintf("pool run %s is not in the run registry", c.Run)).
				WithDetail("run", c.Run)
		}
		groups[i] = g
	}
	return groups, nil
}

// Truncate sorts results by descending score and keeps the first depth.
// Equal scores are ordered by document id. The input is not modified.
func Truncate(results []trec.Result, depth int) []trec.Result {
	sorted := make([]trec.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].DocID < sorted[j].DocID
	})
	if depth < 0 {
		depth = 0
	}
	if depth < len(sorted) {
		sorted = sorted[:depth]
	}
	return sorted
}
