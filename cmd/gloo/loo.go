package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ricesearch/gloo/internal/config"
	"github.com/ricesearch/gloo/internal/loo"
	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
	"github.com/ricesearch/gloo/internal/report"
	"github.com/ricesearch/gloo/internal/trec"
)

func looCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loo [ANNOTATED_QRELS]",
		Short: "Compare official and leave-one-out rankings per group",
		Long: `Rank every run by its official score, then for each group replace that
group's scores with its leave-one-out scores and rank again, holding every
other run at its official score.

Runs and groups come from --run-groups ("runtag pid" per line) or from an
annotated pool / qrels file. Evaluator output is read from
<official-path>/<official-pattern> and <loo-path>/<loo-pattern>, with
RUNTAG replaced by the run tag; only the "all" rows are used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLOO,
	}

	cmd.Flags().String("run-groups", "", "run/group list file")
	cmd.Flags().String("annotated", "", "annotated pool or qrels giving runs and groups")
	cmd.Flags().StringSlice("measures", loo.DefaultMeasures, "measures to compare")
	cmd.Flags().String("official-path", "", "directory of official eval files")
	cmd.Flags().String("official-pattern", "", "template for official eval files")
	cmd.Flags().String("loo-path", "", "directory of leave-one-out eval files")
	cmd.Flags().String("loo-pattern", "", "template for leave-one-out eval files")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	return cmd
}

func runLOO(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, func(cfg *config.Config) {
		overrideString(cmd, "run-groups", &cfg.LOO.RunGroups)
		overrideString(cmd, "annotated", &cfg.LOO.Annotated)
		overrideStrings(cmd, "measures", &cfg.LOO.Measures)
		overrideString(cmd, "official-path", &cfg.LOO.OfficialPath)
		overrideString(cmd, "official-pattern", &cfg.LOO.OfficialPattern)
		overrideString(cmd, "loo-path", &cfg.LOO.LOOPath)
		overrideString(cmd, "loo-pattern", &cfg.LOO.LOOPattern)
		if len(args) == 1 {
			cfg.LOO.Annotated = args[0]
		}
	})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != report.FormatText && format != report.FormatJSON {
		return apperrors.ConfigError("format must be text or json")
	}

	registry, err := loadRunGroups(cfg)
	if err != nil {
		return err
	}
	runs := registry.Runs()

	official, err := trec.LoadScoreTable(runs, trec.RunTemplate(cfg.LOO.OfficialPath, cfg.LOO.OfficialPattern))
	if err != nil {
		return err
	}
	alternate, err := trec.LoadScoreTable(runs, trec.RunTemplate(cfg.LOO.LOOPath, cfg.LOO.LOOPattern))
	if err != nil {
		return err
	}

	log.Info("scores loaded", "runs", len(runs), "groups", len(registry.Groups()), "measures", cfg.LOO.Measures)

	results, err := loo.NewRanker(registry, log).Rank(official, alternate, cfg.LOO.Measures)
	if err != nil {
		log.WithError(err).Error("ranking failed")
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	return writeOutput(cmd, output, func(w io.Writer) error {
		return report.Write(w, format, results)
	})
}

func loadRunGroups(cfg *config.Config) (*trec.Registry, error) {
	switch {
	case cfg.LOO.RunGroups != "":
		return trec.ReadRunGroups(cfg.LOO.RunGroups)
	case cfg.LOO.Annotated != "":
		return trec.ReadAnnotatedRunGroups(cfg.LOO.Annotated)
	default:
		return nil, apperrors.ConfigError("either --run-groups or an annotated qrels file is required")
	}
}
