package logging

import (
	"log/slog"
	"strings"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// infoHighlightKeys orders the fields shown under an info headline. Earlier
// keys surface first; anything unlisted follows in emission order.
var infoHighlightKeys = []string{
	FieldEventType,
	"dataset",
	"status",
	"percent",
	"error_message",
	FieldErrorHint,
	"reason",
	"row_count",
	"column_count",
	"dropped_rows",
	"duplicate_rows",
	"imputed_cells",
	"clipped_cells",
	"removed_rows",
	"feature_count",
	"encoded_columns",
	"scaled_columns",
	"candidate",
	"candidates_evaluated",
	"candidates_failed",
	"selected_model",
	"cv_mse",
	"best_cv_mse",
	"train_rows",
	"holdout_rows",
	"folds",
	"mse",
	"rmse",
	"mae",
	"r2",
	"grouping_count",
	"top_importances",
	"stage_duration",
	"discovered",
	"kept",
	"skipped",
	"artifact_bytes",
}

// selectInfoFields returns formatted info-level fields and a count of hidden entries.
// limit=0 means no limit. includeDebug controls whether debug-only keys are allowed.
func selectInfoFields(attrs []kv, limit int, includeDebug bool) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	if limit < 0 {
		limit = 0
	}
	used := make([]bool, len(attrs))
	formatted := make([]string, len(attrs))
	formattedSet := make([]bool, len(attrs))
	ensureValue := func(idx int) string {
		if !formattedSet[idx] {
			formatted[idx] = formatValueForKey(attrs[idx].key, attrs[idx].value)
			formattedSet[idx] = true
		}
		return formatted[idx]
	}
	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0

	for _, key := range infoHighlightKeys {
		if limit > 0 && len(result) >= limit {
			break
		}
		for idx, attr := range attrs {
			if used[idx] || attr.key != key {
				continue
			}
			used[idx] = true
			if skipInfoKey(attr.key) {
				break
			}
			if !includeDebug && isDebugOnlyKey(attr.key) {
				hidden++
				break
			}
			val := ensureValue(idx)
			if !includeDebug && shouldHideInfoValue(attr.key, val) {
				hidden++
				break
			}
			result = append(result, infoField{label: displayLabel(attr.key), value: val})
			break
		}
	}

	for idx, attr := range attrs {
		if used[idx] {
			continue
		}
		used[idx] = true
		if skipInfoKey(attr.key) {
			continue
		}
		if !includeDebug && isDebugOnlyKey(attr.key) {
			hidden++
			continue
		}
		val := ensureValue(idx)
		if !includeDebug && shouldHideInfoValue(attr.key, val) {
			hidden++
			continue
		}
		if limit <= 0 || len(result) < limit {
			result = append(result, infoField{label: displayLabel(attr.key), value: val})
		} else if limit > 0 {
			hidden++
		}
	}

	return result, hidden
}

// formatValueForKey applies smart formatting based on the key name.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()

	if isByteSizeKey(key) && (v.Kind() == slog.KindInt64 || v.Kind() == slog.KindUint64) {
		var bytes int64
		if v.Kind() == slog.KindInt64 {
			bytes = v.Int64()
		} else {
			bytes = int64(v.Uint64())
		}
		return formatBytes(bytes)
	}

	if isDurationKey(key) && v.Kind() == slog.KindDuration {
		return formatDurationHuman(v.Duration())
	}

	if isPercentKey(key) && v.Kind() == slog.KindFloat64 {
		return formatPercent(v.Float64())
	}

	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}

	value := formatValue(v)
	if key == "error" || key == "error_message" {
		value = truncateErrorValue(value)
	}
	return value
}

// isByteSizeKey returns true if the key represents a byte size.
func isByteSizeKey(key string) bool {
	return strings.HasSuffix(key, "_bytes") ||
		strings.HasSuffix(key, "_size") ||
		key == "size"
}

// isDurationKey returns true if the key represents a duration.
func isDurationKey(key string) bool {
	return strings.HasSuffix(key, "_duration") ||
		strings.HasSuffix(key, "_elapsed") ||
		strings.HasSuffix(key, "_latency") ||
		key == "elapsed" ||
		key == "duration" ||
		key == "backoff"
}

// isPercentKey returns true if the key represents a percentage.
func isPercentKey(key string) bool {
	return strings.HasSuffix(key, "percent")
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldRunID, FieldStage, FieldComponent:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	if key == "" {
		return true
	}
	switch key {
	case FieldCorrelationID,
		"fingerprint",
		"seed",
		"vote_count",
		"popularity",
		"page",
		"attempt",
		"fold",
		"schema_version":
		return true
	}
	if strings.Contains(key, "correlation") {
		return true
	}
	if strings.HasSuffix(key, "_id") && key != FieldRunID {
		return true
	}
	if strings.Contains(key, "_path") || strings.Contains(key, "_dir") || strings.Contains(key, "_file") {
		return true
	}
	if strings.Contains(key, "fingerprint") || strings.Contains(key, "tmdb") {
		return true
	}
	return false
}

func shouldHideInfoValue(key, value string) bool {
	switch key {
	case "error_message", "error", "reason":
		return false
	}
	return len(value) > 120
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case FieldRunID:
		return "Run"
	case FieldStage:
		return "Stage"
	case "dataset":
		return "Dataset"
	case "status":
		return "Status"
	case "row_count":
		return "Rows"
	case "column_count":
		return "Columns"
	case "dropped_rows":
		return "Dropped"
	case "duplicate_rows":
		return "Duplicates"
	case "imputed_cells":
		return "Imputed"
	case "clipped_cells":
		return "Clipped"
	case "removed_rows":
		return "Removed"
	case "feature_count":
		return "Features"
	case "encoded_columns":
		return "Encoded"
	case "scaled_columns":
		return "Scaled"
	case "candidate":
		return "Candidate"
	case "candidates_evaluated":
		return "Candidates"
	case "candidates_failed":
		return "Failed Candidates"
	case "selected_model":
		return "Model"
	case "cv_mse":
		return "CV MSE"
	case "best_cv_mse":
		return "Best CV MSE"
	case "train_rows":
		return "Train Rows"
	case "holdout_rows":
		return "Holdout Rows"
	case "folds":
		return "Folds"
	case "mse":
		return "MSE"
	case "rmse":
		return "RMSE"
	case "mae":
		return "MAE"
	case "r2":
		return "R²"
	case "reason":
		return "Reason"
	case "grouping_count":
		return "Groupings"
	case "top_importances":
		return "Top Importances"
	case "stage_duration":
		return "Duration"
	case "discovered":
		return "Discovered"
	case "kept":
		return "Kept"
	case "kept_so_far":
		return "Kept So Far"
	case "skipped":
		return "Skipped"
	case "artifact_bytes":
		return "Artifact Size"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	if len(parts) == 0 {
		return strings.ToUpper(key[:1]) + strings.ToLower(key[1:])
	}
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	switch len(value) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(value)
	default:
		lower := strings.ToLower(value)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}

// infoSummaryKey scopes repeated-field suppression: per run when a run id is
// present, per dataset during acquisition, per component otherwise.
func infoSummaryKey(component, runID string, attrs []kv) string {
	runID = strings.TrimSpace(runID)
	if runID != "" {
		return runID
	}
	if dataset := attrValue(attrs, "dataset"); dataset != "" {
		return "dataset:" + dataset
	}
	return component
}

func attrValue(attrs []kv, key string) string {
	for _, kv := range attrs {
		if kv.key == key {
			return attrString(kv.value)
		}
	}
	return ""
}
