package runs

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, source_path, label, status, plan_path, fingerprint, profile_json, cleaned_file, features_file, features_meta_file, model_file, model_meta_file, evaluation_file, insights_file, error_message, review_reason, created_at, updated_at, progress_stage, progress_percent, progress_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id              int64
		sourcePath      sql.NullString
		label           sql.NullString
		statusStr       string
		planPath        sql.NullString
		fingerprint     sql.NullString
		profileJSON     sql.NullString
		cleanedFile     sql.NullString
		featuresFile    sql.NullString
		featuresMeta    sql.NullString
		modelFile       sql.NullString
		modelMeta       sql.NullString
		evaluationFile  sql.NullString
		insightsFile    sql.NullString
		errorMessage    sql.NullString
		reviewReason    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&label,
		&statusStr,
		&planPath,
		&fingerprint,
		&profileJSON,
		&cleanedFile,
		&featuresFile,
		&featuresMeta,
		&modelFile,
		&modelMeta,
		&evaluationFile,
		&insightsFile,
		&errorMessage,
		&reviewReason,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:               id,
		SourcePath:       sourcePath.String,
		Label:            label.String,
		Status:           Status(statusStr),
		PlanPath:         planPath.String,
		Fingerprint:      fingerprint.String,
		ProfileJSON:      profileJSON.String,
		CleanedFile:      cleanedFile.String,
		FeaturesFile:     featuresFile.String,
		FeaturesMetaFile: featuresMeta.String,
		ModelFile:        modelFile.String,
		ModelMetaFile:    modelMeta.String,
		EvaluationFile:   evaluationFile.String,
		InsightsFile:     insightsFile.String,
		ErrorMessage:     errorMessage.String,
		ReviewReason:     reviewReason.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
