// Package loo measures how a group's ranking changes when its runs are
// scored against judgments built without that group's contribution.
package loo

import (
	"math"
	"sort"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
	"github.com/ricesearch/gloo/internal/pkg/logger"
	"github.com/ricesearch/gloo/internal/trec"
)

// Table names used in errors.
const (
	OfficialTable = "official"
	LOOTable      = "leave-one-out"
)

// DefaultMeasures are compared when none are requested.
var DefaultMeasures = []string{"map", "P_10", "recip_rank"}

// Row is one run's official and leave-one-out standing for a measure.
type Row struct {
	Run           string  `json:"run"`
	Group         string  `json:"group"`
	OfficialScore float64 `json:"official_score"`
	LOOScore      float64 `json:"loo_score"`
	OfficialRank  int     `json:"official_rank"` // 0 = best
	LOORank       int     `json:"loo_rank"`
	Shift         int     `json:"shift"` // LOORank - OfficialRank; positive means the run dropped
}

// GroupSummary aggregates the rank shifts of one group's runs.
type GroupSummary struct {
	Group     string  `json:"group"`
	Runs      int     `json:"runs"`
	MaxShift  int     `json:"max_shift"` // largest absolute shift
	MeanShift float64 `json:"mean_shift"`
}

// MeasureResult holds the rankings for one measure.
type MeasureResult struct {
	Measure string         `json:"measure"`
	Rows    []Row          `json:"rows"`   // ordered by official rank
	Groups  []GroupSummary `json:"groups"` // ordered by group id
}

// Ranker computes official and leave-one-out rankings.
type Ranker struct {
	registry *trec.Registry
	log      *logger.Logger
}

// NewRanker creates a ranker over the runs of registry.
func NewRanker(registry *trec.Registry, log *logger.Logger) *Ranker {
	if log == nil {
		log = logger.Discard()
	}
	return &Ranker{
		registry: registry,
		log:      log,
	}
}

// Rank computes, for each measure, the official ranking of every
// registered run and each group's leave-one-out ranks. Neither table is
// modified. A registered run missing from either table is an error.
func (r *Ranker) Rank(official, loo *trec.ScoreTable, measures []string) ([]MeasureResult, error) {
	if len(measures) == 0 {
		measures = DefaultMeasures
	}

	results := make([]MeasureResult, 0, len(measures))
	for _, m := range measures {
		res, err := r.rankMeasure(official, loo, m)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Ranker) rankMeasure(official, loo *trec.ScoreTable, measure string) (MeasureResult, error) {
	mlog := r.log.WithMeasure(measure)
	runs := r.registry.Runs()

	baseline, err := column(official, OfficialTable, measure, runs)
	if err != nil {
		return MeasureResult{}, err
	}
	alternate, err := column(loo, LOOTable, measure, runs)
	if err != nil {
		return MeasureResult{}, err
	}

	officialRanks := RankRuns(baseline)
	looRanks := make(map[string]int, len(runs))

	groups := r.registry.Groups()
	for _, g := range groups {
		members := r.registry.RunsOf(g)
		replacement := make(map[string]float64, len(members))
		for _, run := range members {
			replacement[run] = alternate[run]
		}

		ranks := RankRuns(Substitute(baseline, replacement))
		for _, run := range members {
			looRanks[run] = ranks[run]
		}
	}

	rows := make([]Row, 0, len(runs))
	for _, run := range runs {
		group, _ := r.registry.Group(run)
		rows = append(rows, Row{
			Run:           run,
			Group:         group,
			OfficialScore: baseline[run],
			LOOScore:      alternate[run],
			OfficialRank:  officialRanks[run],
			LOORank:       looRanks[run],
			Shift:         looRanks[run] - officialRanks[run],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].OfficialRank < rows[j].OfficialRank
	})

	mlog.Debug("ranked measure", "runs", len(runs), "groups", len(groups))
	return MeasureResult{
		Measure: measure,
		Rows:    rows,
		Groups:  summarize(groups, rows),
	}, nil
}

// column extracts one measure's scores for runs.
func column(table *trec.ScoreTable, name, measure string, runs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(runs))
	for _, run := range runs {
		s, ok := table.Score(measure, run)
		if !ok {
			return nil, apperrors.MissingScoreError(name, measure, run)
		}
		scores[run] = s
	}
	return scores, nil
}

// Substitute returns a copy of baseline with the runs in replacement
// given their replacement scores.
func Substitute(baseline, replacement map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(baseline))
	for run, s := range baseline {
		out[run] = s
	}
	for run, s := range replacement {
		out[run] = s
	}
	return out
}

// RankRuns orders runs by descending score and returns each run's
// 0-based position. Equal scores are ordered by run id.
func RankRuns(scores map[string]float64) map[string]int {
	runs := make([]string, 0, len(scores))
	for run := range scores {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		si, sj := scores[runs[i]], scores[runs[j]]
		if si != sj {
			return si > sj
		}
		return runs[i] < runs[j]
	})

	ranks := make(map[string]int, len(runs))
	for i, run := range runs {
		ranks[run] = i
	}
	return ranks
}

func summarize(groups []string, rows []Row) []GroupSummary {
	byGroup := make(map[string]*GroupSummary, len(groups))
	out := make([]GroupSummary, len(groups))
	for i, g := range groups {
		out[i].Group = g
		byGroup[g] = &out[i]
	}

	for _, row := range rows {
		gs := byGroup[row.Group]
		gs.Runs++
		gs.MeanShift += float64(row.Shift)
		if abs := int(math.Abs(float64(row.Shift))); abs > gs.MaxShift {
			gs.MaxShift = abs
		}
	}
	for i := range out {
		if out[i].Runs > 0 {
			out[i].MeanShift /= float64(out[i].Runs)
		}
	}
	return out
}
