// Package report renders leave-one-out rankings for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ricesearch/gloo/internal/loo"
)

// Formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders results in the given format.
func Write(w io.Writer, format string, results []loo.MeasureResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatText, "":
		return WriteText(w, results)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []loo.MeasureResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteText writes one aligned table per measure followed by the
// per-group summary.
func WriteText(w io.Writer, results []loo.MeasureResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "# %s\n", res.Measure)
		fmt.Fprintln(tw, "run\tgroup\tofficial\tloo\trank\tloo_rank\tshift")
		for _, r := range res.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%d\t%d\t%+d\n",
				r.Run, r.Group, r.OfficialScore, r.LOOScore, r.OfficialRank, r.LOORank, r.Shift)
		}

		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "group\truns\tmax_shift\tmean_shift")
		for _, g := range res.Groups {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%+.2f\n", g.Group, g.Runs, g.MaxShift, g.MeanShift)
		}
	}

	return tw.Flush()
}
