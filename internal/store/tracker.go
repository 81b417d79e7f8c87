package store

import (
	"time"

	"nhtsa-pipeline/internal/model"
	"nhtsa-pipeline/pkg/logger"
)

// RunTracker adapts the store to the pipeline's Tracker contract. Tracking
// failures are logged, never propagated: a run must not fail because its
// bookkeeping did.
type RunTracker struct{}

func (RunTracker) UpdateRunStatus(runID, status string) {
	if err := UpdateRunStatus(runID, status); err != nil {
		logger.Log.Warnf("update run %s status: %v", runID, err)
	}
}

func (RunTracker) SaveStageProgress(runID, stage string, startedAt, finishedAt time.Time, records int) {
	if err := SaveStageProgress(runID, stage, startedAt, finishedAt, records); err != nil {
		logger.Log.Warnf("save run %s stage %s: %v", runID, stage, err)
	}
}

func (RunTracker) SaveRunError(runID string, runErr error) {
	if err := SaveRunError(runID, runErr); err != nil {
		logger.Log.Warnf("save run %s error: %v", runID, err)
	}
}

func (RunTracker) SaveFeatureRows(runID string, rows []model.FeatureRow) {
	if err := SaveFeatureRows(runID, rows); err != nil {
		logger.Log.Warnf("save run %s features: %v", runID, err)
	}
}

func (RunTracker) SetTrainingJobARN(runID, arn string) {
	if err := SetTrainingJobARN(runID, arn); err != nil {
		logger.Log.Warnf("save run %s training job arn: %v", runID, err)
	}
}
