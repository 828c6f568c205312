package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ricesearch/gloo/internal/config"
	"github.com/ricesearch/gloo/internal/qrels"
	"github.com/ricesearch/gloo/internal/trec"
)

func qrelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qrels POOL",
		Short: "Create a depth-k qrels from an annotated pool",
		Long: `Keep the pool entries ranked within the top k by their run, optionally
restricted to an allow-list of runs or groups, and print

  topic 0 docid relevance

sorted by topic then document. With --annotate every contributing
(run, group, rank, score, relevance) tuple is kept instead; that output
does not work with trec_eval.`,
		Args: cobra.ExactArgs(1),
		RunE: runQrels,
	}

	cmd.Flags().IntP("depth", "k", 10, "depth (1-based)")
	cmd.Flags().StringP("rel-level", "l", "1", "minimum relevance level")
	cmd.Flags().String("runs-list", "", "list of runs allowed (default all)")
	cmd.Flags().String("pid-list", "", "list of groups allowed (default all)")
	cmd.Flags().BoolP("annotate", "a", false, "preserve run/group/score annotations")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	return cmd
}

func runQrels(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, func(cfg *config.Config) {
		overrideInt(cmd, "depth", &cfg.Qrels.Depth)
		overrideString(cmd, "rel-level", &cfg.Qrels.RelLevel)
		overrideString(cmd, "runs-list", &cfg.Qrels.RunsList)
		overrideString(cmd, "pid-list", &cfg.Qrels.PidList)
		overrideBool(cmd, "annotate", &cfg.Qrels.Annotate)
	})
	if err != nil {
		return err
	}

	opts := qrels.Options{
		Depth:        cfg.Qrels.Depth,
		MinRelevance: cfg.Qrels.RelLevel,
		Mode:         qrels.Collapsed,
	}
	if cfg.Qrels.Annotate {
		opts.Mode = qrels.Provenance
	}
	if opts.Runs, err = readAllowList(cfg.Qrels.RunsList); err != nil {
		return err
	}
	if opts.Groups, err = readAllowList(cfg.Qrels.PidList); err != nil {
		return err
	}

	entries, err := trec.ReadPool(args[0])
	if err != nil {
		return err
	}

	set := qrels.Extract(entries, opts)
	log.Info("qrels extracted",
		"pool_entries", len(entries),
		"depth", opts.Depth,
		"rel_level", opts.MinRelevance,
		"annotate", cfg.Qrels.Annotate,
		"documents", set.Len())

	output, _ := cmd.Flags().GetString("output")
	return writeOutput(cmd, output, func(w io.Writer) error {
		return qrels.Write(w, set)
	})
}

// readAllowList returns nil, meaning everything is allowed, when path is empty.
func readAllowList(path string) (trec.IDSet, error) {
	if path == "" {
		return nil, nil
	}
	ids, err := trec.ReadList(path)
	if err != nil {
		return nil, err
	}
	return trec.NewIDSet(ids...), nil
}
