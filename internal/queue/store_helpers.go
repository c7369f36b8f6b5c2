package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_url, status, staging_dir, reference_file, container, metadata_json, signals_json, verdict, winning_label, pair_scores_json, master_outcome, master_file, final_dir, report_file, error_message, progress_stage, progress_percent, progress_message, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourceURL       string
		statusStr       string
		stagingDir      sql.NullString
		referenceFile   sql.NullString
		container       sql.NullString
		metadata        sql.NullString
		signals         sql.NullString
		verdict         sql.NullString
		winningLabel    sql.NullString
		pairScores      sql.NullString
		masterOutcome   sql.NullString
		masterFile      sql.NullString
		finalDir        sql.NullString
		reportFile      sql.NullString
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourceURL,
		&statusStr,
		&stagingDir,
		&referenceFile,
		&container,
		&metadata,
		&signals,
		&verdict,
		&winningLabel,
		&pairScores,
		&masterOutcome,
		&masterFile,
		&finalDir,
		&reportFile,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		SourceURL:       sourceURL,
		Status:          Status(statusStr),
		StagingDir:      stagingDir.String,
		ReferenceFile:   referenceFile.String,
		Container:       container.String,
		MetadataJSON:    metadata.String,
		SignalsJSON:     signals.String,
		Verdict:         verdict.String,
		WinningLabel:    winningLabel.String,
		PairScoresJSON:  pairScores.String,
		MasterOutcome:   masterOutcome.String,
		MasterFile:      masterFile.String,
		FinalDir:        finalDir.String,
		ReportFile:      reportFile.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
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
