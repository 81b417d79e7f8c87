package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nhtsa-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the run-tracking database and creates tables if needed.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			params TEXT,
			status TEXT,
			training_job_arn TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_stages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			stage TEXT,
			started_at DATETIME,
			finished_at DATETIME,
			records INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS run_features (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			make TEXT,
			model TEXT,
			complaints_count INTEGER,
			recalls_count INTEGER
		);`,
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new pipeline run.
func SaveRun(runID string, params model.RunParams) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, params, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, paramsJSON, model.StatusPending, now, now)
	return err
}

// UpdateRunStatus updates the run's state-machine status.
func UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SetTrainingJobARN records the submitted training job handle.
func SetTrainingJobARN(runID, arn string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET training_job_arn = ?, updated_at = ? WHERE id = ?`, arn, now, runID)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// SaveStageProgress records one completed stage with its timing.
func SaveStageProgress(runID, stage string, startedAt, finishedAt time.Time, records int) error {
	_, err := db.Exec(`INSERT INTO run_stages (run_id, stage, started_at, finished_at, records) VALUES (?, ?, ?, ?, ?)`,
		runID, stage, startedAt.UTC(), finishedAt.UTC(), records)
	return err
}

// SaveFeatureRows persists the aggregated feature table for inspection.
func SaveFeatureRows(runID string, rows []model.FeatureRow) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO run_features (run_id, make, model, complaints_count, recalls_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(runID, r.Make, r.Model, r.ComplaintsCount, r.RecallsCount); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, COALESCE(training_job_arn, ''), created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status, arn string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &arn, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":               id,
			"status":           status,
			"training_job_arn": arn,
			"createdAt":        createdAt,
			"updatedAt":        updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches full run parameters and status.
func GetRun(runID string) (map[string]interface{}, error) {
	var paramsJSON, status, arn string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT params, status, COALESCE(training_job_arn, ''), created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&paramsJSON, &status, &arn, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var params model.RunParams
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":               runID,
		"params":           params,
		"status":           status,
		"training_job_arn": arn,
		"createdAt":        createdAt,
		"updatedAt":        updatedAt,
	}, nil
}

// GetRunErrors returns all recorded errors for a run.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"message":   msg,
			"createdAt": createdAt,
		})
	}
	return errs, rows.Err()
}

// GetRunStages returns stage progress for a run in execution order.
func GetRunStages(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, started_at, finished_at, records FROM run_stages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []map[string]interface{}
	for rows.Next() {
		var stage string
		var startedAt, finishedAt time.Time
		var records int
		if err := rows.Scan(&stage, &startedAt, &finishedAt, &records); err != nil {
			return nil, err
		}
		stages = append(stages, map[string]interface{}{
			"stage":      stage,
			"startedAt":  startedAt,
			"finishedAt": finishedAt,
			"records":    records,
		})
	}
	return stages, rows.Err()
}

// GetFeatureRows returns the persisted feature table for a run.
func GetFeatureRows(runID string) ([]model.FeatureRow, error) {
	rows, err := db.Query(`SELECT make, model, complaints_count, recalls_count FROM run_features WHERE run_id = ? ORDER BY make, model`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []model.FeatureRow
	for rows.Next() {
		var f model.FeatureRow
		if err := rows.Scan(&f.Make, &f.Model, &f.ComplaintsCount, &f.RecallsCount); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}
