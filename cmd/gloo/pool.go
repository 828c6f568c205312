package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ricesearch/gloo/internal/config"
	"github.com/ricesearch/gloo/internal/pool"
	"github.com/ricesearch/gloo/internal/trec"
)

func poolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Build the judgment-annotated pool from the contributing runs",
		Long: `Merge the top-ranked documents of every pool run, per topic, and annotate
each with its judgment (-1 when unjudged). Output lines are

  topic docid run group rank score relevance

Per-run result files are located with the results template, in which
RUNTAG and TOPIC are replaced by the run tag and topic id.`,
		Args: cobra.NoArgs,
		RunE: runPool,
	}

	cmd.Flags().String("runs-table", "", "colon-delimited run registry")
	cmd.Flags().String("track", "", "registry track whose runs are registered")
	cmd.Flags().String("judgments", "", "full judgment (qrels) file")
	cmd.Flags().String("pool-runs", "", "pool runs list (run [depth] per line)")
	cmd.Flags().String("results", "", "per-run result file template")
	cmd.Flags().String("topics", "", "topics, e.g. 401-450 or 401,405")
	cmd.Flags().String("topics-file", "", "file with one topic per line")
	cmd.Flags().IntP("depth", "k", trec.DefaultDepth, "default pool depth per run (1-based)")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	return cmd
}

func runPool(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, func(cfg *config.Config) {
		overrideString(cmd, "runs-table", &cfg.Pool.RunsTable)
		overrideString(cmd, "track", &cfg.Pool.Track)
		overrideString(cmd, "judgments", &cfg.Pool.Judgments)
		overrideString(cmd, "pool-runs", &cfg.Pool.PoolRuns)
		overrideString(cmd, "results", &cfg.Pool.Results)
		overrideString(cmd, "topics", &cfg.Pool.Topics)
		overrideString(cmd, "topics-file", &cfg.Pool.TopicsFile)
		overrideInt(cmd, "depth", &cfg.Pool.Depth)
	})
	if err != nil {
		return err
	}

	topics, err := cfg.TopicList()
	if err != nil {
		return err
	}

	registry, err := trec.ReadRegistry(cfg.Pool.RunsTable, cfg.Pool.Track)
	if err != nil {
		return err
	}

	judgments, err := trec.ReadJudgments(cfg.Pool.Judgments)
	if err != nil {
		return err
	}

	contributors, err := trec.ReadContributors(cfg.Pool.PoolRuns, cfg.Pool.Depth)
	if err != nil {
		return err
	}

	log.Info("inputs loaded",
		"topics", len(topics),
		"registered_runs", registry.Len(),
		"judgments", judgments.Len(),
		"pool_runs", len(contributors))

	loader := trec.NewFileResultLoader(trec.ResultTemplate(cfg.Pool.Results))
	builder := pool.NewBuilder(judgments, registry, contributors, loader, log)

	entries, err := builder.Build(cmd.Context(), topics)
	if err != nil {
		log.WithError(err).Error("pool build failed")
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	return writeOutput(cmd, output, func(w io.Writer) error {
		return trec.WritePool(w, entries)
	})
}
