package model

// Run status values. A run walks the happy path in order and can drop to
// StatusFailed from any non-terminal state.
const (
	StatusPending            = "pending"
	StatusFetchingTaxonomy   = "fetching_taxonomy"
	StatusEnumeratingModels  = "enumerating_models"
	StatusFetchingComplaints = "fetching_complaints"
	StatusFetchingRecalls    = "fetching_recalls"
	StatusAggregating        = "aggregating"
	StatusPersisting         = "persisting"
	StatusSubmitting         = "submitting"
	StatusCompleted          = "completed"
	StatusFailed             = "failed"
)

// Default run parameters, applied wherever the caller leaves a field empty.
const (
	DefaultBucketName    = "nhtsa-analytics"
	DefaultModelYear     = 2020
	DefaultTrainRuntime  = 600
	DefaultTrainInstance = "ml.m5.large"
)

// RunParams is the configuration for one pipeline run. It is the struct for
// POST /api/v1/runs and for the one-shot CLI flags.
type RunParams struct {
	BucketName    string `json:"bucket_name"`
	ModelYear     int    `json:"model_year"`
	TrainRuntime  int    `json:"train_runtime"`  // seconds
	TrainInstance string `json:"train_instance"` // e.g. ml.m5.large
}

// ApplyDefaults fills any unset parameter with its default value.
func (p *RunParams) ApplyDefaults() {
	if p.BucketName == "" {
		p.BucketName = DefaultBucketName
	}
	if p.ModelYear == 0 {
		p.ModelYear = DefaultModelYear
	}
	if p.TrainRuntime == 0 {
		p.TrainRuntime = DefaultTrainRuntime
	}
	if p.TrainInstance == "" {
		p.TrainInstance = DefaultTrainInstance
	}
}

// RunResult is the completion signal of a pipeline run.
type RunResult struct {
	Status         string `json:"status"`
	TrainingJobARN string `json:"training_job_arn,omitempty"`
}
