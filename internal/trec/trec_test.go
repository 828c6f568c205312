package trec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/ricesearch/gloo/internal/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Keys() = %v, want [b a]", got)
	}
	if v, _ := m.Get("b"); v != 3 {
		t.Errorf("Get(b) = %d, want 3", v)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) reported present")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (lookup must not insert)", m.Len())
	}

	calls := 0
	create := func() int { calls++; return 9 }
	m.GetOrInsert("a", create)
	m.GetOrInsert("c", create)
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	sorted := m.SortedKeys(func(a, b string) bool { return a < b })
	if !reflect.DeepEqual(sorted, []string{"a", "b", "c"}) {
		t.Errorf("SortedKeys() = %v", sorted)
	}
}

func TestCompareIDs(t *testing.T) {
	ids := []string{"450", "99", "401", "abc", "100"}
	SortIDs(ids)
	want := []string{"99", "100", "401", "450", "abc"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("SortIDs() = %v, want %v", ids, want)
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.9, "0.9"},
		{12, "12.0"},
		{-3.25, "-3.25"},
		{0, "0.0"},
	}
	for _, tt := range tests {
		if got := FormatScore(tt.in); got != tt.want {
			t.Errorf("FormatScore(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRegistry(t *testing.T) {
	input := `runA:G1:x:adhoc:y:z:automatic
runB:G1:x:adhoc:y:z:manual
runC:G2:x:filtering:y:z:automatic
runD:G2:x:adhoc:y:z:task:with:colons
`
	reg, err := ParseRegistry("runs_table", strings.NewReader(input), DefaultTrack)
	if err != nil {
		t.Fatalf("ParseRegistry() error = %v", err)
	}

	if got := reg.Runs(); !reflect.DeepEqual(got, []string{"runA", "runB", "runD"}) {
		t.Errorf("Runs() = %v", got)
	}
	if _, ok := reg.Group("runC"); ok {
		t.Error("non-adhoc run registered")
	}
	if g, _ := reg.Group("runD"); g != "G2" {
		t.Errorf("Group(runD) = %s, want G2", g)
	}
	if got := reg.RunsOf("G1"); !reflect.DeepEqual(got, []string{"runA", "runB"}) {
		t.Errorf("RunsOf(G1) = %v", got)
	}
}

func TestParseRegistry_Malformed(t *testing.T) {
	_, err := ParseRegistry("runs_table", strings.NewReader("runA:G1:adhoc\n"), DefaultTrack)
	if !apperrors.IsMalformed(err) {
		t.Fatalf("error = %v, want malformed input", err)
	}
}

func TestRegistry_Conflict(t *testing.T) {
	_, err := ParseRunGroups("groups", strings.NewReader("runA G1\nrunA G2\n"))
	if !apperrors.IsMalformed(err) {
		t.Fatalf("error = %v, want malformed input", err)
	}

	reg, err := ParseRunGroups("groups", strings.NewReader("runA G1\nrunA G1\n"))
	if err != nil {
		t.Fatalf("duplicate same-group line: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestParseJudgments(t *testing.T) {
	j, err := ParseJudgments("qrels", strings.NewReader("401 0 DOC1 1\n401 0 DOC2 0\n\n402 0 DOC9 2\n"))
	if err != nil {
		t.Fatalf("ParseJudgments() error = %v", err)
	}
	if j.Len() != 3 {
		t.Errorf("Len() = %d, want 3", j.Len())
	}
	if rel := j.Relevance("401", "DOC1"); rel != 1 {
		t.Errorf("Relevance(401, DOC1) = %d, want 1", rel)
	}
	if rel := j.Relevance("401", "DOC3"); rel != Unjudged {
		t.Errorf("Relevance(401, DOC3) = %d, want %d", rel, Unjudged)
	}
	if rel := j.Relevance("499", "DOC1"); rel != Unjudged {
		t.Errorf("Relevance(499, DOC1) = %d, want %d", rel, Unjudged)
	}
	if got := j.Topics(); !reflect.DeepEqual(got, []string{"401", "402"}) {
		t.Errorf("Topics() = %v (lookups must not create topics)", got)
	}
}

func TestParseJudgments_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few fields", "401 0 DOC1\n"},
		{"too many fields", "401 0 DOC1 1 extra\n"},
		{"non-integer grade", "401 0 DOC1 yes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJudgments("qrels", strings.NewReader(tt.input))
			if !apperrors.IsMalformed(err) {
				t.Errorf("error = %v, want malformed input", err)
			}
		})
	}
}

func TestParseResults(t *testing.T) {
	input := "401 Q0 DOC1 1 0.9 runA\n401 Q0 DOC2 2 0.5 runA\n401 Q0 DOC3 3 0.3 runA\n"
	results, err := ParseResults("t401", "401", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseResults() error = %v", err)
	}
	want := []Result{{"DOC1", 0.9}, {"DOC2", 0.5}, {"DOC3", 0.3}}
	if !reflect.DeepEqual(results, want) {
		t.Errorf("ParseResults() = %v, want %v", results, want)
	}
}

func TestParseResults_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong field count", "401 Q0 DOC1 1 0.9\n"},
		{"bad score", "401 Q0 DOC1 1 high runA\n"},
		{"duplicate document", "401 Q0 DOC1 1 0.9 runA\n401 Q0 DOC1 2 0.8 runA\n"},
		{"other topic", "401 Q0 DOC1 1 0.9 runA\n402 Q0 DOC9 1 0.8 runA\n"},
		{"only other topic", "402 Q0 DOC9 1 0.8 runA\n"},
		{"NaN score", "401 Q0 DOC1 1 NaN runA\n"},
		{"infinite score", "401 Q0 DOC1 1 +Inf runA\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResults("t401", "401", strings.NewReader(tt.input))
			if !apperrors.IsMalformed(err) {
				t.Errorf("error = %v, want malformed input", err)
			}
		})
	}
}

func TestFileResultLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "results/runA/t401", "401 Q0 DOC1 1 0.9 runA\n")

	loader := NewFileResultLoader(ResultTemplate(filepath.Join(dir, "results/RUNTAG/tTOPIC")))

	results, err := loader.Load(context.Background(), "runA", "401")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(results) != 1 || results[0].DocID != "DOC1" {
		t.Errorf("Load() = %v", results)
	}

	_, err = loader.Load(context.Background(), "runA", "402")
	if !apperrors.IsMissingResource(err) {
		t.Errorf("missing file error = %v, want missing resource", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx, "runA", "401"); err == nil {
		t.Error("Load() with cancelled context returned nil error")
	}
}

func TestFileResultLoader_RejectsOtherTopics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "runA", "401 Q0 DOC1 1 0.9 runA\n402 Q0 DOC9 1 0.8 runA\n")

	loader := NewFileResultLoader(ResultTemplate(filepath.Join(dir, "RUNTAG")))
	results, err := loader.Load(context.Background(), "runA", "401")
	if !apperrors.IsMalformed(err) {
		t.Fatalf("Load() = %v, %v; want malformed input", results, err)
	}
}

func TestTemplates(t *testing.T) {
	if got := ResultTemplate("results/RUNTAG/tTOPIC")("runA", "401"); got != "results/runA/t401" {
		t.Errorf("ResultTemplate = %s", got)
	}
	if got := RunTemplate("evals", "summary.RUNTAG")("runA"); got != filepath.Join("evals", "summary.runA") {
		t.Errorf("RunTemplate = %s", got)
	}
	if got := RunTemplate(".", "eval.RUNTAG")("runB"); got != "eval.runB" {
		t.Errorf("RunTemplate(.) = %s", got)
	}
}

func TestPoolRoundTrip(t *testing.T) {
	input := "401 DOC1 runA G1 1 0.9 1\n401 DOC2 runA G1 2 0.5 0\n401 DOC3 runB G2 1 12.0 -1\n"
	entries, err := ParsePool("pool", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePool() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[2].Relevance != Unjudged || entries[2].Rank != 1 {
		t.Errorf("entries[2] = %+v", entries[2])
	}

	var buf bytes.Buffer
	if err := WritePool(&buf, entries); err != nil {
		t.Fatalf("WritePool() error = %v", err)
	}
	if buf.String() != input {
		t.Errorf("WritePool() =\n%s\nwant\n%s", buf.String(), input)
	}
}

func TestPoolRoundTrip_KeepsScoreText(t *testing.T) {
	input := "401 DOC1 runA G1 1 1e-05 1\n401 DOC2 runA G1 2 0.5000 0\n"
	entries, err := ParsePool("pool", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePool() error = %v", err)
	}
	if entries[0].Score != 1e-05 {
		t.Errorf("Score = %v, want 1e-05", entries[0].Score)
	}

	var buf bytes.Buffer
	if err := WritePool(&buf, entries); err != nil {
		t.Fatalf("WritePool() error = %v", err)
	}
	if buf.String() != input {
		t.Errorf("WritePool() =\n%s\nwant\n%s", buf.String(), input)
	}

	built := PoolLine(PoolEntry{Topic: "401", DocID: "DOC1", Run: "runA", Group: "G1", Rank: 1, Score: 0.5})
	if built != "401 DOC1 runA G1 1 0.5 0" {
		t.Errorf("PoolLine() = %q", built)
	}
}

func TestParsePool_Malformed(t *testing.T) {
	tests := []string{
		"401 DOC1 runA G1 1 0.9\n",
		"401 DOC1 runA G1 one 0.9 1\n",
		"401 DOC1 runA G1 1 x 1\n",
		"401 DOC1 runA G1 1 0.9 rel\n",
		"401 DOC1 runA G1 1 NaN 1\n",
		"401 DOC1 runA G1 1 -Inf 1\n",
	}
	for _, input := range tests {
		if _, err := ParsePool("pool", strings.NewReader(input)); !apperrors.IsMalformed(err) {
			t.Errorf("ParsePool(%q) error = %v, want malformed input", input, err)
		}
	}
}

func TestReadAnnotatedRunGroups(t *testing.T) {
	path := writeFile(t, t.TempDir(), "annots", "401 DOC1 runA G1 1 0.9 1\n401 DOC1 runC G2 3 0.4 1\n402 DOC7 runA G1 1 0.8 0\n")
	reg, err := ReadAnnotatedRunGroups(path)
	if err != nil {
		t.Fatalf("ReadAnnotatedRunGroups() error = %v", err)
	}
	if got := reg.Runs(); !reflect.DeepEqual(got, []string{"runA", "runC"}) {
		t.Errorf("Runs() = %v", got)
	}
	if g, _ := reg.Group("runC"); g != "G2" {
		t.Errorf("Group(runC) = %s", g)
	}
}

func TestReadContributors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "runs-list", "runA\nrunB 50\n\nrunA 20\n")
	got, err := ReadContributors(path, DefaultDepth)
	if err != nil {
		t.Fatalf("ReadContributors() error = %v", err)
	}
	want := []Contributor{{"runA", 20}, {"runB", 50}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadContributors() = %v, want %v", got, want)
	}

	bad := writeFile(t, t.TempDir(), "runs-list", "runA zero\n")
	if _, err := ReadContributors(bad, DefaultDepth); !apperrors.IsMalformed(err) {
		t.Errorf("error = %v, want malformed input", err)
	}

	if _, err := ReadContributors(filepath.Join(t.TempDir(), "nope"), DefaultDepth); !apperrors.IsMissingResource(err) {
		t.Errorf("error = %v, want missing resource", err)
	}
}

func TestParseList(t *testing.T) {
	ids, err := ParseList("runs", strings.NewReader("runA\n  runB  \n\nrunC\n"))
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	set := NewIDSet(ids...)
	for _, id := range []string{"runA", "runB", "runC"} {
		if !set.Contains(id) {
			t.Errorf("set missing %s", id)
		}
	}
	if set.Contains("") {
		t.Error("blank line added to set")
	}
}

func TestParseTopics(t *testing.T) {
	tests := []struct {
		expr    string
		want    []string
		wantErr bool
	}{
		{expr: "401-403", want: []string{"401", "402", "403"}},
		{expr: "401, 405,410-411", want: []string{"401", "405", "410", "411"}},
		{expr: "q1,q2", want: []string{"q1", "q2"}},
		{expr: "410-401", wantErr: true},
		{expr: "a-b", wantErr: true},
		{expr: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseTopics(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTopics(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTopics(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseMeasures(t *testing.T) {
	input := `runid                 	all	runA
num_q                 	all	50
map                   	401	0.1234
map                   	all	0.2500
P_10                  	all	0.4100
recip_rank            	all	0.6000
`
	scores, err := ParseMeasures("summary.runA", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMeasures() error = %v", err)
	}
	if got := scores.Keys(); !reflect.DeepEqual(got, []string{"num_q", "map", "P_10", "recip_rank"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := scores.Get("map"); v != 0.25 {
		t.Errorf("map = %v, want 0.25 (per-topic row must be ignored)", v)
	}
}

func TestParseMeasures_Malformed(t *testing.T) {
	for _, input := range []string{"map all\n", "map all high\n", "map all NaN\n", "map all Inf\n"} {
		if _, err := ParseMeasures("eval", strings.NewReader(input)); !apperrors.IsMalformed(err) {
			t.Errorf("ParseMeasures(%q) error = %v, want malformed input", input, err)
		}
	}
}

func TestLoadScoreTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "summary.runA", "map all 0.5\nP_10 all 0.6\n")
	writeFile(t, dir, "summary.runB", "map all 0.4\n")

	table, err := LoadScoreTable([]string{"runA", "runB"}, RunTemplate(dir, "summary.RUNTAG"))
	if err != nil {
		t.Fatalf("LoadScoreTable() error = %v", err)
	}
	if s, ok := table.Score("map", "runB"); !ok || s != 0.4 {
		t.Errorf("Score(map, runB) = %v, %v", s, ok)
	}
	if _, ok := table.Score("P_10", "runB"); ok {
		t.Error("Score(P_10, runB) should be absent")
	}
	if got := table.Measures(); !reflect.DeepEqual(got, []string{"map", "P_10"}) {
		t.Errorf("Measures() = %v", got)
	}

	_, err = LoadScoreTable([]string{"runA", "runZ"}, RunTemplate(dir, "summary.RUNTAG"))
	if !apperrors.IsMissingResource(err) {
		t.Errorf("error = %v, want missing resource", err)
	}
}

func TestScoreTable_Clone(t *testing.T) {
	table := NewScoreTable()
	table.Set("map", "runA", 0.5)
	clone := table.Clone()
	clone.Set("map", "runA", 0.1)

	if s, _ := table.Score("map", "runA"); s != 0.5 {
		t.Errorf("source table modified through clone: %v", s)
	}
	if !reflect.DeepEqual(table.Clone(), table) {
		t.Error("Clone() is not deeply equal to its source")
	}
}
