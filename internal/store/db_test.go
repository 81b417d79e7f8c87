package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"nhtsa-pipeline/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := InitDB(path); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
}

func TestRunLifecycle(t *testing.T) {
	initTestDB(t)

	params := model.RunParams{
		BucketName:    "nhtsa-analytics",
		ModelYear:     2020,
		TrainRuntime:  600,
		TrainInstance: "ml.m5.large",
	}
	if err := SaveRun("run-1", params); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	run, err := GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run["status"] != model.StatusPending {
		t.Errorf("status = %v, want %q", run["status"], model.StatusPending)
	}
	if got := run["params"].(model.RunParams); !reflect.DeepEqual(got, params) {
		t.Errorf("params = %+v, want %+v", got, params)
	}

	if err := UpdateRunStatus("run-1", model.StatusCompleted); err != nil {
		t.Fatalf("UpdateRunStatus() error = %v", err)
	}
	if err := SetTrainingJobARN("run-1", "arn:aws:sagemaker:job/1"); err != nil {
		t.Fatalf("SetTrainingJobARN() error = %v", err)
	}

	run, err = GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run["status"] != model.StatusCompleted {
		t.Errorf("status = %v, want %q", run["status"], model.StatusCompleted)
	}
	if run["training_job_arn"] != "arn:aws:sagemaker:job/1" {
		t.Errorf("arn = %v", run["training_job_arn"])
	}
}

func TestListRuns(t *testing.T) {
	initTestDB(t)

	if err := SaveRun("run-a", model.RunParams{}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := SaveRun("run-b", model.RunParams{}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	runs, err := ListRuns()
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if r["training_job_arn"] != "" {
			t.Errorf("unset arn listed as %v", r["training_job_arn"])
		}
	}
}

func TestRunErrors(t *testing.T) {
	initTestDB(t)

	if err := SaveRunError("run-1", errors.New("upstream gave up")); err != nil {
		t.Fatalf("SaveRunError() error = %v", err)
	}
	if err := SaveRunError("run-1", nil); err != nil {
		t.Fatalf("SaveRunError(nil) error = %v", err)
	}

	errs, err := GetRunErrors("run-1")
	if err != nil {
		t.Fatalf("GetRunErrors() error = %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1 (nil errors are not recorded)", len(errs))
	}
	if errs[0]["message"] != "upstream gave up" {
		t.Errorf("message = %v", errs[0]["message"])
	}
}

func TestStageProgress(t *testing.T) {
	initTestDB(t)

	start := time.Now().Add(-time.Minute)
	if err := SaveStageProgress("run-1", "taxonomy", start, start.Add(10*time.Second), 42); err != nil {
		t.Fatalf("SaveStageProgress() error = %v", err)
	}
	if err := SaveStageProgress("run-1", "models", start.Add(10*time.Second), start.Add(30*time.Second), 900); err != nil {
		t.Fatalf("SaveStageProgress() error = %v", err)
	}

	stages, err := GetRunStages("run-1")
	if err != nil {
		t.Fatalf("GetRunStages() error = %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(stages))
	}
	if stages[0]["stage"] != "taxonomy" || stages[1]["stage"] != "models" {
		t.Errorf("stages out of execution order: %v, %v", stages[0]["stage"], stages[1]["stage"])
	}
	if stages[1]["records"] != 900 {
		t.Errorf("records = %v, want 900", stages[1]["records"])
	}
}

func TestFeatureRowsRoundTrip(t *testing.T) {
	initTestDB(t)

	rows := []model.FeatureRow{
		{Make: "BOLT", Model: "Z", ComplaintsCount: 3, RecallsCount: 0},
		{Make: "ACME", Model: "X", ComplaintsCount: 1, RecallsCount: 2},
	}
	if err := SaveFeatureRows("run-1", rows); err != nil {
		t.Fatalf("SaveFeatureRows() error = %v", err)
	}
	if err := SaveFeatureRows("run-2", []model.FeatureRow{{Make: "OTHER", Model: "Y"}}); err != nil {
		t.Fatalf("SaveFeatureRows() error = %v", err)
	}

	got, err := GetFeatureRows("run-1")
	if err != nil {
		t.Fatalf("GetFeatureRows() error = %v", err)
	}
	want := []model.FeatureRow{
		{Make: "ACME", Model: "X", ComplaintsCount: 1, RecallsCount: 2},
		{Make: "BOLT", Model: "Z", ComplaintsCount: 3, RecallsCount: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetFeatureRows() = %v, want %v", got, want)
	}
}

func TestTrackerAbsorbsStoreFailures(t *testing.T) {
	initTestDB(t)
	db.Close() // every store call below now fails

	tr := RunTracker{}
	tr.UpdateRunStatus("run-1", model.StatusFailed)
	tr.SaveStageProgress("run-1", "taxonomy", time.Now(), time.Now(), 0)
	tr.SaveRunError("run-1", errors.New("boom"))
	tr.SaveFeatureRows("run-1", []model.FeatureRow{{Make: "A", Model: "B"}})
	tr.SetTrainingJobARN("run-1", "arn:x")
	// reaching here without a panic is the assertion
}
