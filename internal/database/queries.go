package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/postforge/postscore/internal/models"
	"github.com/postforge/postscore/internal/scoring"
)

// CreateHybridAnalysis inserts a queued hybrid analysis job record.
func (db *DB) CreateHybridAnalysis(id, text string) error {
	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO hybrid_analyses (id, text, fingerprint, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, text, scoring.Fingerprint(text), models.JobQueued, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert hybrid analysis: %w", err)
	}
	return nil
}

// MarkHybridProcessing flips a queued job to processing.
func (db *DB) MarkHybridProcessing(id string) error {
	return db.updateStatus("hybrid_analyses", id, models.JobProcessing, "")
}

// CompleteHybridAnalysis stores the blended result and marks the job complete.
func (db *DB) CompleteHybridAnalysis(id string, result *models.HybridResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := db.conn.Exec(`
		UPDATE hybrid_analyses
		SET status = ?, method = ?, confidence = ?, result = ?, last_error = NULL, updated_at = ?
		WHERE id = ?
	`, models.JobComplete, result.AnalysisMethod, result.Confidence, string(resultJSON), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete hybrid analysis: %w", err)
	}
	return requireRow(res)
}

// FailHybridAnalysis records a terminal failure.
func (db *DB) FailHybridAnalysis(id, errMsg string) error {
	return db.updateStatus("hybrid_analyses", id, models.JobFailed, errMsg)
}

// GetHybridAnalysis retrieves a hybrid analysis job by ID.
func (db *DB) GetHybridAnalysis(id string) (*models.HybridAnalysis, error) {
	var (
		record     models.HybridAnalysis
		resultJSON sql.NullString
		lastError  sql.NullString
	)

	err := db.conn.QueryRow(`
		SELECT id, text, status, result, last_error, created_at, updated_at
		FROM hybrid_analyses
		WHERE id = ?
	`, id).Scan(&record.ID, &record.Text, &record.Status, &resultJSON, &lastError,
		&record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hybrid analysis: %w", err)
	}

	if resultJSON.Valid && resultJSON.String != "" {
		var result models.HybridResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		record.Result = &result
	}
	record.LastError = lastError.String
	return &record, nil
}

// ListHybridAnalyses retrieves hybrid analyses newest first. An empty
// method matches all records.
func (db *DB) ListHybridAnalyses(method string, limit, offset int) ([]*models.HybridAnalysis, error) {
	query := `
		SELECT id, text, status, result, last_error, created_at, updated_at
		FROM hybrid_analyses
	`
	args := []any{}
	if method != "" {
		query += " WHERE method = ?"
		args = append(args, method)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hybrid analyses: %w", err)
	}
	defer rows.Close()

	var records []*models.HybridAnalysis
	for rows.Next() {
		var (
			record     models.HybridAnalysis
			resultJSON sql.NullString
			lastError  sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.Text, &record.Status, &resultJSON, &lastError,
			&record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if resultJSON.Valid && resultJSON.String != "" {
			var result models.HybridResult
			if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal result: %w", err)
			}
			record.Result = &result
		}
		record.LastError = lastError.String
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// DeleteHybridAnalysis deletes a hybrid analysis by ID.
func (db *DB) DeleteHybridAnalysis(id string) error {
	res, err := db.conn.Exec("DELETE FROM hybrid_analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete hybrid analysis: %w", err)
	}
	return requireRow(res)
}

// CreateComparison inserts a queued comparison job record.
func (db *DB) CreateComparison(id, textA, textB string) error {
	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO comparisons (id, text_a, text_b, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, textA, textB, models.JobQueued, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert comparison: %w", err)
	}
	return nil
}

// MarkComparisonProcessing flips a queued comparison to processing.
func (db *DB) MarkComparisonProcessing(id string) error {
	return db.updateStatus("comparisons", id, models.JobProcessing, "")
}

// comparisonPayload is the JSON stored in the comparisons result column:
// the verdict plus the full per-side metrics.
type comparisonPayload struct {
	Result   models.ComparisonResult `json:"result"`
	MetricsA models.PostMetrics      `json:"metrics_a"`
	MetricsB models.PostMetrics      `json:"metrics_b"`
}

// CompleteComparison stores the verdict and both sides' metrics.
func (db *DB) CompleteComparison(id string, result models.ComparisonResult, metricsA, metricsB models.PostMetrics) error {
	resultJSON, err := json.Marshal(comparisonPayload{Result: result, MetricsA: metricsA, MetricsB: metricsB})
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := db.conn.Exec(`
		UPDATE comparisons
		SET status = ?, winner = ?, margin = ?, result = ?, last_error = NULL, updated_at = ?
		WHERE id = ?
	`, models.JobComplete, result.Winner, result.Margin, string(resultJSON), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete comparison: %w", err)
	}
	return requireRow(res)
}

// FailComparison records a terminal failure.
func (db *DB) FailComparison(id, errMsg string) error {
	return db.updateStatus("comparisons", id, models.JobFailed, errMsg)
}

// GetComparison retrieves a comparison job by ID.
func (db *DB) GetComparison(id string) (*models.Comparison, error) {
	var (
		record     models.Comparison
		resultJSON sql.NullString
		lastError  sql.NullString
	)

	err := db.conn.QueryRow(`
		SELECT id, text_a, text_b, status, result, last_error, created_at, updated_at
		FROM comparisons
		WHERE id = ?
	`, id).Scan(&record.ID, &record.TextA, &record.TextB, &record.Status, &resultJSON, &lastError,
		&record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	if resultJSON.Valid && resultJSON.String != "" {
		var payload comparisonPayload
		if err := json.Unmarshal([]byte(resultJSON.String), &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		record.Result = &payload.Result
		record.MetricsA = &payload.MetricsA
		record.MetricsB = &payload.MetricsB
	}
	record.LastError = lastError.String
	return &record, nil
}

// DeleteComparison deletes a comparison by ID.
func (db *DB) DeleteComparison(id string) error {
	res, err := db.conn.Exec("DELETE FROM comparisons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comparison: %w", err)
	}
	return requireRow(res)
}

func (db *DB) updateStatus(table, id, status, errMsg string) error {
	var lastError any
	if errMsg != "" {
		lastError = errMsg
	}
	res, err := db.conn.Exec(
		"UPDATE "+table+" SET status = ?, last_error = ?, updated_at = ? WHERE id = ?",
		status, lastError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
