package features_test

import (
	"reflect"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/features"
	"marquee/internal/plan"
)

func featurePlan() *plan.Plan {
	return &plan.Plan{
		Dataset: plan.Dataset{
			Label:    "movies",
			IDColumn: "id",
			Target:   "revenue",
		},
		Features: plan.Features{
			Scaling:   "none",
			Selection: plan.Selection{Method: "none"},
		},
		Insights: plan.Insights{GroupBy: []string{"genre"}},
	}
}

func newTable(names []string, rows ...[]string) *dataset.Table {
	table := dataset.NewTable(names...)
	table.Rows = append(table.Rows, rows...)
	return table
}

func TestBuildNumericPassthrough(t *testing.T) {
	table := newTable([]string{"id", "budget", "revenue"},
		[]string{"1", "100", "500"},
		[]string{"2", "200", "900"},
	)

	built, err := features.Build(table, featurePlan())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !reflect.DeepEqual(built.Names, []string{"budget"}) {
		t.Fatalf("feature names = %v, want [budget]", built.Names)
	}
	if !reflect.DeepEqual(built.Target, []float64{500, 900}) {
		t.Fatalf("target = %v", built.Target)
	}
	if !reflect.DeepEqual(built.IDs, []string{"1", "2"}) {
		t.Fatalf("ids = %v", built.IDs)
	}
	if built.Matrix[1][0] != 200 {
		t.Fatalf("matrix[1][0] = %v, want 200", built.Matrix[1][0])
	}
}

func TestBuildOneHotSortedSchema(t *testing.T) {
	p := featurePlan()
	p.Features.Encode = map[string]string{"genre": "onehot"}

	table := newTable([]string{"id", "genre", "budget", "revenue"},
		[]string{"1", "Drama", "100", "500"},
		[]string{"2", "Action", "200", "900"},
		[]string{"3", "Drama", "300", "700"},
	)

	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []string{"genre=Action", "genre=Drama", "budget"}
	if !reflect.DeepEqual(built.Names, want) {
		t.Fatalf("feature names = %v, want %v", built.Names, want)
	}
	if built.Matrix[0][1] != 1 || built.Matrix[1][0] != 1 {
		t.Fatalf("one-hot rows wrong: %v", built.Matrix)
	}
}

func TestBuildDeterministicAcrossRuns(t *testing.T) {
	p := featurePlan()
	p.Features.Encode = map[string]string{"genre": "frequency"}
	p.Features.Derived = []plan.Derived{
		{Name: "release_year", Kind: "year", Source: "release_date"},
		{Name: "log_budget", Kind: "log1p", Source: "budget"},
	}
	p.Features.Scaling = "standard"

	build := func() *features.Built {
		table := newTable([]string{"id", "genre", "release_date", "budget", "revenue"},
			[]string{"1", "Drama", "2001-06-01", "100", "500"},
			[]string{"2", "Action", "2005-11-20", "200", "900"},
			[]string{"3", "Drama", "2010-01-15", "300", "700"},
		)
		built, err := features.Build(table, p)
		if err != nil {
			t.Fatalf("Build returned error: %v", err)
		}
		return built
	}

	first := build()
	second := build()
	if !reflect.DeepEqual(first.Names, second.Names) {
		t.Fatalf("schemas differ: %v vs %v", first.Names, second.Names)
	}
	if !reflect.DeepEqual(first.Matrix, second.Matrix) {
		t.Fatalf("matrices differ across identical runs")
	}
	if !reflect.DeepEqual(first.Meta, second.Meta) {
		t.Fatalf("metadata differs across identical runs")
	}
}

func TestBuildFixedDimensionality(t *testing.T) {
	p := featurePlan()
	p.Features.Encode = map[string]string{"genre": "onehot"}

	table := newTable([]string{"id", "genre", "budget", "revenue"},
		[]string{"1", "Drama", "100", "500"},
		[]string{"2", "Action", "200", "900"},
		[]string{"3", "Comedy", "300", "700"},
	)
	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	width := len(built.Names)
	for row, vector := range built.Matrix {
		if len(vector) != width {
			t.Fatalf("row %d has %d features, want %d", row, len(vector), width)
		}
	}
}

func TestBuildQuantileBinRecordsEdges(t *testing.T) {
	p := featurePlan()
	p.Features.Derived = []plan.Derived{
		{Name: "budget_tier", Kind: "quantile_bin", Source: "budget", Bins: 2, Labels: []string{"low", "high"}},
	}
	p.Features.Encode = map[string]string{"budget_tier": "label"}

	table := newTable([]string{"id", "budget", "revenue"},
		[]string{"1", "100", "500"},
		[]string{"2", "200", "900"},
		[]string{"3", "300", "700"},
		[]string{"4", "400", "800"},
	)
	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	spec, ok := built.Meta.DerivedByName("budget_tier")
	if !ok {
		t.Fatalf("budget_tier spec not recorded")
	}
	if len(spec.Edges) != 1 {
		t.Fatalf("edges = %v, want one edge", spec.Edges)
	}
	if !reflect.DeepEqual(spec.Labels, []string{"low", "high"}) {
		t.Fatalf("labels = %v", spec.Labels)
	}
}

func TestBuildFillsMissingNumericWithMean(t *testing.T) {
	p := featurePlan()
	table := newTable([]string{"id", "runtime", "revenue"},
		[]string{"1", "90", "500"},
		[]string{"2", "", "900"},
		[]string{"3", "110", "700"},
	)
	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(built.Meta.Fills) != 1 || built.Meta.Fills[0].Column != "runtime" {
		t.Fatalf("fills = %+v", built.Meta.Fills)
	}
	if built.Matrix[1][0] != 100 {
		t.Fatalf("filled value = %v, want 100", built.Matrix[1][0])
	}
}

func TestBuildTopKCorrelationSelection(t *testing.T) {
	p := featurePlan()
	p.Features.Selection = plan.Selection{Method: "top_k_correlation", K: 1}

	// budget tracks revenue exactly; noise does not.
	table := newTable([]string{"id", "budget", "noise", "revenue"},
		[]string{"1", "100", "7", "100"},
		[]string{"2", "200", "3", "200"},
		[]string{"3", "300", "9", "300"},
		[]string{"4", "400", "1", "400"},
	)
	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !reflect.DeepEqual(built.Names, []string{"budget"}) {
		t.Fatalf("selected = %v, want [budget]", built.Names)
	}
	if !reflect.DeepEqual(built.Meta.Selection.Dropped, []string{"noise"}) {
		t.Fatalf("dropped = %v, want [noise]", built.Meta.Selection.Dropped)
	}
}

func TestBuildMissingTargetIsError(t *testing.T) {
	table := newTable([]string{"id", "budget", "revenue"},
		[]string{"1", "100", ""},
	)
	if _, err := features.Build(table, featurePlan()); err == nil {
		t.Fatalf("expected error for missing target")
	}
}

func TestTableRoundTripThroughLoadDataset(t *testing.T) {
	p := featurePlan()
	p.Features.Scaling = "minmax"
	table := newTable([]string{"id", "budget", "revenue"},
		[]string{"1", "100", "500"},
		[]string{"2", "200", "900"},
		[]string{"3", "300", "700"},
	)
	built, err := features.Build(table, p)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	dir := t.TempDir()
	csvPath := dir + "/features.csv"
	metaPath := dir + "/features_meta.json"
	if err := dataset.Write(csvPath, built.Table()); err != nil {
		t.Fatalf("write features: %v", err)
	}
	if err := features.WriteMetadata(metaPath, built.Meta); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	meta, err := features.LoadMetadata(metaPath)
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	loaded, err := features.LoadDataset(csvPath, meta)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if !reflect.DeepEqual(loaded.Names, built.Names) {
		t.Fatalf("names = %v, want %v", loaded.Names, built.Names)
	}
	if !reflect.DeepEqual(loaded.Matrix, built.Matrix) {
		t.Fatalf("matrix round trip mismatch")
	}
	if !reflect.DeepEqual(loaded.Target, built.Target) {
		t.Fatalf("target round trip mismatch")
	}
}
