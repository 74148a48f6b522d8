package plan

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"marquee/internal/services"
)

//go:embed sample_plan.yaml
var samplePlan string

// Plan is the per-dataset pipeline definition: which columns matter, how to
// clean them, which features to build, which models to try, and how to pick
// a winner. A plan is read-only once a run records its path.
type Plan struct {
	Dataset  Dataset  `yaml:"dataset"`
	Ingest   Ingest   `yaml:"ingest"`
	Clean    Clean    `yaml:"clean"`
	Features Features `yaml:"features"`
	Training Training `yaml:"training"`
	Insights Insights `yaml:"insights"`
}

// Dataset names the columns the pipeline operates on.
type Dataset struct {
	Label       string   `yaml:"label"`
	IDColumn    string   `yaml:"id_column"`
	Target      string   `yaml:"target"`
	Required    []string `yaml:"required"`
	Dates       []string `yaml:"dates"`
	Numeric     []string `yaml:"numeric"`
	Categorical []string `yaml:"categorical"`
}

// Ingest controls how structurally bad raw rows are handled.
type Ingest struct {
	// BadRows is "drop" (discard and warn, within budget) or "fail".
	BadRows string `yaml:"bad_rows"`
	// BadRowBudget caps dropped rows under the drop policy; exceeding it
	// fails ingestion.
	BadRowBudget int `yaml:"bad_row_budget"`
}

// Clean selects the cleaning policies.
type Clean struct {
	Missing    Missing  `yaml:"missing"`
	Duplicates string   `yaml:"duplicates"`
	Outliers   Outliers `yaml:"outliers"`
}

// Missing configures missing-value handling.
type Missing struct {
	// Policy is "impute" or "drop".
	Policy string `yaml:"policy"`
	// DefaultStrategy applies to required columns without an explicit entry:
	// mean, median, mode, or constant.
	DefaultStrategy string `yaml:"default_strategy"`
	// Columns overrides the strategy per column.
	Columns map[string]string `yaml:"columns"`
	// Constants supplies the fill value for constant-strategy columns.
	Constants map[string]string `yaml:"constants"`
}

// Outliers configures Tukey-fence outlier handling.
type Outliers struct {
	// Policy is "clip", "remove", or "keep".
	Policy        string   `yaml:"policy"`
	Columns       []string `yaml:"columns"`
	IQRMultiplier float64  `yaml:"iqr_multiplier"`
	MaxIterations int      `yaml:"max_iterations"`
}

// Features configures derivation, encoding, scaling, and selection.
type Features struct {
	Derived []Derived `yaml:"derived"`
	// Encode maps a categorical column to onehot, label, or frequency.
	Encode map[string]string `yaml:"encode"`
	// Scaling is standard, minmax, robust, or none.
	Scaling   string    `yaml:"scaling"`
	Selection Selection `yaml:"selection"`
}

// Derived declares one derived feature.
type Derived struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
	// Numerator and Denominator apply to kind "ratio".
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`
	// Separator applies to first_token and token_count; defaults to "|".
	Separator string `yaml:"separator"`
	// Bins and Labels apply to quantile_bin.
	Bins   int      `yaml:"bins"`
	Labels []string `yaml:"labels"`
}

// Selection configures the feature selection criterion.
type Selection struct {
	// Method is none, variance_threshold, or top_k_correlation.
	Method    string  `yaml:"method"`
	K         int     `yaml:"k"`
	Threshold float64 `yaml:"threshold"`
}

// Training configures the split, cross-validation, and candidate search.
type Training struct {
	SplitRatio float64 `yaml:"split_ratio"`
	Seed       int64   `yaml:"seed"`
	Folds      int     `yaml:"folds"`
	// Metric is mse, rmse, mae, or r2.
	Metric string `yaml:"metric"`
	// Mode is "min" or "max" and is always explicit, never inferred from the
	// metric name.
	Mode       string      `yaml:"mode"`
	Candidates []Candidate `yaml:"candidates"`
}

// Candidate declares one model family plus its hyperparameter grid.
type Candidate struct {
	// Family is linear, ridge, or knn.
	Family string `yaml:"family"`
	// Grid lists the values searched per hyperparameter; the search space is
	// the cartesian product across parameters.
	Grid map[string][]float64 `yaml:"grid"`
}

// Insights configures the grouping report.
type Insights struct {
	GroupBy        []string `yaml:"group_by"`
	TopImportances int      `yaml:"top_importances"`
}

// Load reads, normalizes, and validates a plan file. Failures carry the
// configuration error marker so runs route to review rather than retry.
func Load(path string) (*Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "open",
			fmt.Sprintf("Cannot open plan %s", path), err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var p Plan
	if err := decoder.Decode(&p); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plan", "parse",
			fmt.Sprintf("Plan %s is not valid YAML", path), err)
	}

	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) normalize() {
	p.Dataset.Label = strings.TrimSpace(p.Dataset.Label)
	p.Dataset.IDColumn = strings.TrimSpace(p.Dataset.IDColumn)
	p.Dataset.Target = strings.TrimSpace(p.Dataset.Target)

	p.Ingest.BadRows = normalizeToken(p.Ingest.BadRows, "drop")
	if p.Ingest.BadRowBudget < 0 {
		p.Ingest.BadRowBudget = 0
	}

	p.Clean.Missing.Policy = normalizeToken(p.Clean.Missing.Policy, "impute")
	p.Clean.Missing.DefaultStrategy = normalizeToken(p.Clean.Missing.DefaultStrategy, "mean")
	for column, strategy := range p.Clean.Missing.Columns {
		p.Clean.Missing.Columns[column] = normalizeToken(strategy, "")
	}
	p.Clean.Duplicates = normalizeToken(p.Clean.Duplicates, "first")
	p.Clean.Outliers.Policy = normalizeToken(p.Clean.Outliers.Policy, "keep")
	if p.Clean.Outliers.IQRMultiplier <= 0 {
		p.Clean.Outliers.IQRMultiplier = 1.5
	}
	if p.Clean.Outliers.MaxIterations <= 0 {
		p.Clean.Outliers.MaxIterations = 10
	}

	for i := range p.Features.Derived {
		d := &p.Features.Derived[i]
		d.Name = strings.TrimSpace(d.Name)
		d.Kind = normalizeToken(d.Kind, "")
		d.Source = strings.TrimSpace(d.Source)
		if d.Separator == "" {
			d.Separator = "|"
		}
	}
	for column, scheme := range p.Features.Encode {
		p.Features.Encode[column] = normalizeToken(scheme, "")
	}
	p.Features.Scaling = normalizeToken(p.Features.Scaling, "none")
	p.Features.Selection.Method = normalizeToken(p.Features.Selection.Method, "none")

	p.Training.Metric = normalizeToken(p.Training.Metric, "")
	p.Training.Mode = normalizeToken(p.Training.Mode, "")
	if p.Training.Folds == 0 {
		p.Training.Folds = 5
	}
	for i := range p.Training.Candidates {
		p.Training.Candidates[i].Family = normalizeToken(p.Training.Candidates[i].Family, "")
	}

	if p.Insights.TopImportances == 0 {
		p.Insights.TopImportances = 10
	}
}

func normalizeToken(value, fallback string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

// Strategy returns the imputation strategy for a column.
func (m Missing) Strategy(column string) string {
	if strategy, ok := m.Columns[column]; ok && strategy != "" {
		return strategy
	}
	return m.DefaultStrategy
}

// DerivedByName looks up a derived-feature definition.
func (p *Plan) DerivedByName(name string) (Derived, bool) {
	for _, d := range p.Features.Derived {
		if d.Name == name {
			return d, true
		}
	}
	return Derived{}, false
}

// CreateSample writes the embedded sample plan to the given path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plan directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		return fmt.Errorf("write sample plan: %w", err)
	}
	return nil
}
