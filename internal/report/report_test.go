package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ricesearch/gloo/internal/loo"
)

func sampleResults() []loo.MeasureResult {
	return []loo.MeasureResult{
		{
			Measure: "map",
			Rows: []loo.Row{
				{Run: "A", Group: "G1", OfficialScore: 0.5, LOOScore: 0.2, OfficialRank: 0, LOORank: 2, Shift: 2},
				{Run: "B", Group: "G1", OfficialScore: 0.4, LOOScore: 0.45, OfficialRank: 1, LOORank: 0, Shift: -1},
				{Run: "C", Group: "G2", OfficialScore: 0.3, LOOScore: 0.3, OfficialRank: 2, LOORank: 2, Shift: 0},
			},
			Groups: []loo.GroupSummary{
				{Group: "G1", Runs: 2, MaxShift: 2, MeanShift: 0.5},
				{Group: "G2", Runs: 1},
			},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, sampleResults()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# map", "0.5000", "0.2000", "+2", "-1", "+0.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleResults()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded []loo.MeasureResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Rows[1].LOORank != 0 {
		t.Errorf("decoded = %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"loo_rank": 2`) {
		t.Errorf("JSON output missing loo_rank field:\n%s", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("Write(xml) error = nil")
	}
}
