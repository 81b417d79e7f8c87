package pipeline

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"nhtsa-pipeline/internal/model"
	"nhtsa-pipeline/internal/storage"
	"nhtsa-pipeline/internal/training"
	"nhtsa-pipeline/pkg/logger"
)

//go:embed train_logistic_regression.py
var trainingScript []byte

const scriptKey = "scripts/train_logistic_regression.py"

// Fetcher is the upstream data-acquisition contract, satisfied by
// nhtsa.Client and by fakes in tests.
type Fetcher interface {
	FetchMakes(ctx context.Context, modelYear int, issueType model.IssueType) ([]string, error)
	FetchModels(ctx context.Context, modelYear int, makes []string, issueType model.IssueType) ([]model.ModelRecord, error)
	FetchComplaints(ctx context.Context, models []model.ModelRecord) ([]model.ComplaintRecord, error)
	FetchRecalls(ctx context.Context, models []model.ModelRecord) ([]model.RecallRecord, error)
}

// Tracker records run progress. Tracking failures never fail a run, so
// implementations log instead of returning errors.
type Tracker interface {
	UpdateRunStatus(runID, status string)
	SaveStageProgress(runID, stage string, startedAt, finishedAt time.Time, records int)
	SaveRunError(runID string, err error)
	SaveFeatureRows(runID string, rows []model.FeatureRow)
	SetTrainingJobARN(runID, arn string)
}

// Runner sequences one pipeline run: taxonomy → models → complaints →
// recalls → aggregate → persist → submit. All collaborators are passed in
// explicitly so tests substitute fakes.
type Runner struct {
	Fetcher       Fetcher
	Storage       storage.ObjectStorage
	Training      training.Submitter
	Tracker       Tracker
	TrainingImage string
	RoleARN       string

	// Now stamps storage keys and job names; tests pin it.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Run executes the pipeline once. Fail-fast: the first fatal error moves
// the run to failed and returns; nothing is retried and no partial run is
// ever marked completed.
func (r *Runner) Run(ctx context.Context, runID string, params model.RunParams) (model.RunResult, error) {
	params.ApplyDefaults()
	start := time.Now()
	logger.Log.Infof("starting run %s for model year %d", runID, params.ModelYear)

	fail := func(err error) (model.RunResult, error) {
		r.Tracker.UpdateRunStatus(runID, model.StatusFailed)
		r.Tracker.SaveRunError(runID, err)
		logger.Log.Errorf("run %s failed: %v", runID, err)
		return model.RunResult{Status: model.StatusFailed}, err
	}

	// --- Taxonomy ---
	r.Tracker.UpdateRunStatus(runID, model.StatusFetchingTaxonomy)
	stageStart := time.Now()
	makes, err := r.Fetcher.FetchMakes(ctx, params.ModelYear, model.IssueComplaints)
	if err != nil {
		return fail(err)
	}
	r.Tracker.SaveStageProgress(runID, "taxonomy", stageStart, time.Now(), len(makes))

	// --- Model enumeration ---
	r.Tracker.UpdateRunStatus(runID, model.StatusEnumeratingModels)
	stageStart = time.Now()
	models, err := r.Fetcher.FetchModels(ctx, params.ModelYear, makes, model.IssueComplaints)
	if err != nil {
		return fail(err)
	}
	r.Tracker.SaveStageProgress(runID, "models", stageStart, time.Now(), len(models))

	// --- Complaints ---
	r.Tracker.UpdateRunStatus(runID, model.StatusFetchingComplaints)
	stageStart = time.Now()
	complaints, err := r.Fetcher.FetchComplaints(ctx, models)
	if err != nil {
		return fail(err)
	}
	r.Tracker.SaveStageProgress(runID, "complaints", stageStart, time.Now(), len(complaints))

	// --- Recalls ---
	r.Tracker.UpdateRunStatus(runID, model.StatusFetchingRecalls)
	stageStart = time.Now()
	recalls, err := r.Fetcher.FetchRecalls(ctx, models)
	if err != nil {
		return fail(err)
	}
	r.Tracker.SaveStageProgress(runID, "recalls", stageStart, time.Now(), len(recalls))

	// --- Aggregation ---
	r.Tracker.UpdateRunStatus(runID, model.StatusAggregating)
	stageStart = time.Now()
	rows := Aggregate(complaints, recalls)
	r.Tracker.SaveFeatureRows(runID, rows)
	r.Tracker.SaveStageProgress(runID, "aggregate", stageStart, time.Now(), len(rows))
	logger.Log.Infof("run %s aggregated %d feature rows", runID, len(rows))

	// --- Persistence ---
	r.Tracker.UpdateRunStatus(runID, model.StatusPersisting)
	stageStart = time.Now()
	data, err := EncodeCSV(rows)
	if err != nil {
		return fail(err)
	}

	stamp := r.now().Format("20060102150405")
	dataKey := fmt.Sprintf("data/train_data_%s.csv", stamp)
	if err := r.Storage.Put(ctx, params.BucketName, dataKey, "text/csv", data); err != nil {
		return fail(&CollaboratorError{Collaborator: "storage", Err: err})
	}
	if err := r.Storage.Put(ctx, params.BucketName, scriptKey, "text/x-python", trainingScript); err != nil {
		return fail(&CollaboratorError{Collaborator: "storage", Err: err})
	}
	r.Tracker.SaveStageProgress(runID, "persist", stageStart, time.Now(), len(rows))

	// --- Training submission ---
	r.Tracker.UpdateRunStatus(runID, model.StatusSubmitting)
	stageStart = time.Now()
	spec := training.JobSpec{
		Name:              "LogisticRegressionJob-" + stamp,
		TrainingImage:     r.TrainingImage,
		RoleARN:           r.RoleARN,
		DataS3URI:         fmt.Sprintf("s3://%s/%s", params.BucketName, dataKey),
		OutputS3Path:      fmt.Sprintf("s3://%s/models/", params.BucketName),
		ScriptS3URI:       fmt.Sprintf("s3://%s/%s", params.BucketName, scriptKey),
		InstanceType:      params.TrainInstance,
		MaxRuntimeSeconds: params.TrainRuntime,
		Metrics: []training.MetricDefinition{
			{Name: "accuracy", Regex: `accuracy=([0-9\.]+)`},
			{Name: "precision", Regex: `precision=([0-9\.]+)`},
		},
	}
	arn, err := r.Training.Submit(ctx, spec)
	if err != nil {
		return fail(&CollaboratorError{Collaborator: "training", Err: err})
	}
	r.Tracker.SetTrainingJobARN(runID, arn)
	r.Tracker.SaveStageProgress(runID, "submit", stageStart, time.Now(), 1)

	r.Tracker.UpdateRunStatus(runID, model.StatusCompleted)
	logger.Log.Infof("run %s completed in %v, training job %s", runID, time.Since(start), arn)
	return model.RunResult{Status: model.StatusCompleted, TrainingJobARN: arn}, nil
}
