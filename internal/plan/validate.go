package plan

import (
	"fmt"
	"strings"

	"marquee/internal/services"
)

// Validate checks the plan for unknown policies and incoherent settings.
func (p *Plan) Validate() error {
	var issues []string

	issues = append(issues, p.validateDataset()...)
	issues = append(issues, p.validateIngest()...)
	issues = append(issues, p.validateClean()...)
	issues = append(issues, p.validateFeatures()...)
	issues = append(issues, p.validateTraining()...)
	issues = append(issues, p.validateInsights()...)

	if len(issues) > 0 {
		return services.Wrap(services.ErrConfiguration, "plan", "validate",
			fmt.Sprintf("Invalid plan: %s", strings.Join(issues, "; ")), nil)
	}
	return nil
}

func (p *Plan) validateDataset() []string {
	var issues []string
	if p.Dataset.Label == "" {
		issues = append(issues, "dataset.label must be set")
	}
	if p.Dataset.Target == "" {
		issues = append(issues, "dataset.target must be set")
	}
	if p.Dataset.IDColumn == "" {
		issues = append(issues, "dataset.id_column must be set")
	}
	for _, required := range p.Dataset.Required {
		if strings.TrimSpace(required) == "" {
			issues = append(issues, "dataset.required contains a blank column name")
		}
	}
	return issues
}

func (p *Plan) validateIngest() []string {
	var issues []string
	switch p.Ingest.BadRows {
	case "drop", "fail":
	default:
		issues = append(issues, fmt.Sprintf("ingest.bad_rows %q must be drop or fail", p.Ingest.BadRows))
	}
	return issues
}

func (p *Plan) validateClean() []string {
	var issues []string
	switch p.Clean.Missing.Policy {
	case "impute", "drop":
	default:
		issues = append(issues, fmt.Sprintf("clean.missing.policy %q must be impute or drop", p.Clean.Missing.Policy))
	}
	if !validStrategy(p.Clean.Missing.DefaultStrategy) {
		issues = append(issues, fmt.Sprintf("clean.missing.default_strategy %q must be mean, median, mode, or constant", p.Clean.Missing.DefaultStrategy))
	}
	for column, strategy := range p.Clean.Missing.Columns {
		if !validStrategy(strategy) {
			issues = append(issues, fmt.Sprintf("clean.missing.columns.%s %q must be mean, median, mode, or constant", column, strategy))
		}
		if strategy == "constant" {
			if _, ok := p.Clean.Missing.Constants[column]; !ok {
				issues = append(issues, fmt.Sprintf("clean.missing.constants missing a value for constant-strategy column %q", column))
			}
		}
	}
	switch p.Clean.Duplicates {
	case "first", "drop-all":
	default:
		issues = append(issues, fmt.Sprintf("clean.duplicates %q must be first or drop-all", p.Clean.Duplicates))
	}
	switch p.Clean.Outliers.Policy {
	case "clip", "remove", "keep":
	default:
		issues = append(issues, fmt.Sprintf("clean.outliers.policy %q must be clip, remove, or keep", p.Clean.Outliers.Policy))
	}
	if p.Clean.Outliers.Policy != "keep" && len(p.Clean.Outliers.Columns) == 0 {
		issues = append(issues, "clean.outliers.columns must list at least one column unless the policy is keep")
	}
	return issues
}

func validStrategy(strategy string) bool {
	switch strategy {
	case "mean", "median", "mode", "constant":
		return true
	default:
		return false
	}
}

func (p *Plan) validateFeatures() []string {
	var issues []string
	seen := make(map[string]struct{}, len(p.Features.Derived))
	for _, d := range p.Features.Derived {
		if d.Name == "" {
			issues = append(issues, "features.derived entry without a name")
			continue
		}
		if _, dup := seen[d.Name]; dup {
			issues = append(issues, fmt.Sprintf("features.derived.%s declared twice", d.Name))
		}
		seen[d.Name] = struct{}{}
		switch d.Kind {
		case "year", "month", "season", "log1p", "first_token", "token_count":
			if d.Source == "" {
				issues = append(issues, fmt.Sprintf("features.derived.%s needs a source column", d.Name))
			}
		case "ratio":
			if d.Numerator == "" || d.Denominator == "" {
				issues = append(issues, fmt.Sprintf("features.derived.%s needs numerator and denominator", d.Name))
			}
		case "quantile_bin":
			if d.Source == "" {
				issues = append(issues, fmt.Sprintf("features.derived.%s needs a source column", d.Name))
			}
			if d.Bins < 2 {
				issues = append(issues, fmt.Sprintf("features.derived.%s needs at least 2 bins", d.Name))
			}
			if len(d.Labels) > 0 && len(d.Labels) != d.Bins {
				issues = append(issues, fmt.Sprintf("features.derived.%s has %d labels for %d bins", d.Name, len(d.Labels), d.Bins))
			}
		default:
			issues = append(issues, fmt.Sprintf("features.derived.%s kind %q is unknown", d.Name, d.Kind))
		}
	}
	for column, scheme := range p.Features.Encode {
		switch scheme {
		case "onehot", "label", "frequency":
		default:
			issues = append(issues, fmt.Sprintf("features.encode.%s %q must be onehot, label, or frequency", column, scheme))
		}
	}
	switch p.Features.Scaling {
	case "standard", "minmax", "robust", "none":
	default:
		issues = append(issues, fmt.Sprintf("features.scaling %q must be standard, minmax, robust, or none", p.Features.Scaling))
	}
	switch p.Features.Selection.Method {
	case "none":
	case "variance_threshold":
		if p.Features.Selection.Threshold < 0 {
			issues = append(issues, "features.selection.threshold must not be negative")
		}
	case "top_k_correlation":
		if p.Features.Selection.K <= 0 {
			issues = append(issues, "features.selection.k must be positive for top_k_correlation")
		}
	default:
		issues = append(issues, fmt.Sprintf("features.selection.method %q must be none, variance_threshold, or top_k_correlation", p.Features.Selection.Method))
	}
	return issues
}

func (p *Plan) validateTraining() []string {
	var issues []string
	if p.Training.SplitRatio <= 0 || p.Training.SplitRatio >= 1 {
		issues = append(issues, fmt.Sprintf("training.split_ratio %v must be between 0 and 1 exclusive", p.Training.SplitRatio))
	}
	if p.Training.Folds < 2 {
		issues = append(issues, fmt.Sprintf("training.folds %d must be at least 2", p.Training.Folds))
	}
	switch p.Training.Metric {
	case "mse", "rmse", "mae", "r2":
	default:
		issues = append(issues, fmt.Sprintf("training.metric %q must be mse, rmse, mae, or r2", p.Training.Metric))
	}
	switch p.Training.Mode {
	case "min", "max":
	default:
		issues = append(issues, fmt.Sprintf("training.mode %q must be min or max (it is never inferred)", p.Training.Mode))
	}
	if len(p.Training.Candidates) == 0 {
		issues = append(issues, "training.candidates must list at least one model")
	}
	for i, candidate := range p.Training.Candidates {
		switch candidate.Family {
		case "linear", "ridge", "knn":
		default:
			issues = append(issues, fmt.Sprintf("training.candidates[%d].family %q must be linear, ridge, or knn", i, candidate.Family))
		}
		for param, values := range candidate.Grid {
			if len(values) == 0 {
				issues = append(issues, fmt.Sprintf("training.candidates[%d].grid.%s is empty", i, param))
			}
			for _, value := range values {
				if value <= 0 {
					issues = append(issues, fmt.Sprintf("training.candidates[%d].grid.%s contains non-positive value %v", i, param, value))
				}
			}
		}
	}
	return issues
}

func (p *Plan) validateInsights() []string {
	var issues []string
	for _, column := range p.Insights.GroupBy {
		if strings.TrimSpace(column) == "" {
			issues = append(issues, "insights.group_by contains a blank column name")
		}
	}
	if p.Insights.TopImportances < 0 {
		issues = append(issues, "insights.top_importances must not be negative")
	}
	return issues
}
