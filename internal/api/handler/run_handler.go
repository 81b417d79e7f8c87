package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"nhtsa-pipeline/internal/model"
	"nhtsa-pipeline/internal/store"
)

// PipelineRunner runs one pipeline execution to completion.
type PipelineRunner interface {
	Run(ctx context.Context, runID string, params model.RunParams) (model.RunResult, error)
}

// RunHandler serves the pipeline trigger and run-history endpoints.
type RunHandler struct {
	Runner   PipelineRunner
	Defaults model.RunParams
}

func NewRunHandler(runner PipelineRunner, defaults model.RunParams) *RunHandler {
	return &RunHandler{Runner: runner, Defaults: defaults}
}

// CreateRun triggers a pipeline run
// @Summary Trigger a pipeline run
// @Description Fetch NHTSA complaint and recall data for a model year, build the feature table, upload it and submit a training job. Runs synchronously.
// @Tags runs
// @Accept json
// @Produce json
// @Param params body model.RunParams false "Run parameters (all optional)"
// @Success 200 {object} map[string]interface{} "Training job submitted"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Upstream or collaborator failure"
// @Router /runs [post]
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	params := h.Defaults
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}
	params.ApplyDefaults()

	runID := uuid.New().String()
	if err := store.SaveRun(runID, params); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	res, err := h.Runner.Run(r.Context(), runID, params)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": http.StatusBadGateway,
			"run_id":     runID,
			"error":      err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": http.StatusOK,
		"run_id":     runID,
		"body":       fmt.Sprintf("Triggered SageMaker job: %s", res.TrainingJobARN),
	})
}

// ListRuns retrieves all pipeline runs
// @Summary List runs
// @Description Get all pipeline runs with their current status, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve parameters and status of a specific run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "")
	if !ok {
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunFeatures retrieves the feature table of a run
// @Summary Get run feature table
// @Description Retrieve the aggregated per-(make, model) feature rows persisted for a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Feature rows"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/features [get]
func GetRunFeatures(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/features")
	if !ok {
		return
	}

	features, err := store.GetFeatureRows(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve features", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":   runID,
		"features": features,
		"count":    len(features),
	})
}

// GetRunErrors retrieves errors for a run
// @Summary Get run errors
// @Description Retrieve all errors recorded during a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errs, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetRunStages retrieves stage progress for a run
// @Summary Get run stages
// @Description Retrieve per-stage timing and record counts for a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run stages"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/stages [get]
func GetRunStages(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/stages")
	if !ok {
		return
	}

	stages, err := store.GetRunStages(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve stages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"stages": stages,
		"count":  len(stages),
	})
}

// runIDFromPath extracts the run ID from /api/v1/runs/{id}<suffix>.
func runIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return "", false
	}
	return runID, true
}
