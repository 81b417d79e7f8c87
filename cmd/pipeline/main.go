package main

import (
	"context"
	"flag"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/google/uuid"

	"nhtsa-pipeline/internal/config"
	"nhtsa-pipeline/internal/nhtsa"
	"nhtsa-pipeline/internal/pipeline"
	"nhtsa-pipeline/internal/storage"
	"nhtsa-pipeline/internal/store"
	"nhtsa-pipeline/internal/training"
	"nhtsa-pipeline/pkg/logger"
)

// One-shot batch entry point: run the pipeline once and exit. This is what
// the scheduler invokes; it retries by re-invoking, so no retry logic here.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	bucket := flag.String("bucket", "", "override destination bucket")
	year := flag.Int("year", 0, "override model year")
	runtime := flag.Int("runtime", 0, "override training max runtime in seconds")
	instance := flag.String("instance", "", "override training instance type")
	out := flag.String("out", "", "also write the feature table CSV to this local path")
	timeout := flag.Duration("timeout", 0, "deadline for the whole run (0 = none)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Fatalf("load config: %v", err)
		}
		cfg = config.Default()
	}
	logger.Init(cfg.Log.Level)

	if err := store.InitDB(cfg.DB.Path); err != nil {
		logger.Log.Fatalf("init database: %v", err)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Log.Fatalf("load aws config: %v", err)
	}

	runner := &pipeline.Runner{
		Fetcher:       nhtsa.NewClient(cfg.NHTSA.BaseURL, cfg.NHTSA.RequestsPerSecond, cfg.NHTSA.Timeout()),
		Storage:       storage.NewS3Storage(awsCfg),
		Training:      training.NewSageMakerSubmitter(awsCfg),
		Tracker:       store.RunTracker{},
		TrainingImage: cfg.Train.Image,
		RoleARN:       cfg.Train.RoleARN,
	}

	params := cfg.RunParams()
	if *bucket != "" {
		params.BucketName = *bucket
	}
	if *year != 0 {
		params.ModelYear = *year
	}
	if *runtime != 0 {
		params.TrainRuntime = *runtime
	}
	if *instance != "" {
		params.TrainInstance = *instance
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, params); err != nil {
		logger.Log.Fatalf("save run: %v", err)
	}

	start := time.Now()
	res, err := runner.Run(ctx, runID, params)
	if err != nil {
		logger.Log.Errorf("run %s failed after %v: %v", runID, time.Since(start), err)
		os.Exit(1)
	}
	logger.Log.Infof("run %s: %s (training job %s)", runID, res.Status, res.TrainingJobARN)

	if *out != "" {
		writeLocalCSV(runID, *out)
	}
}

func writeLocalCSV(runID, path string) {
	rows, err := store.GetFeatureRows(runID)
	if err != nil {
		logger.Log.Errorf("load feature rows: %v", err)
		return
	}
	data, err := pipeline.EncodeCSV(rows)
	if err != nil {
		logger.Log.Errorf("encode feature csv: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Log.Errorf("write %s: %v", path, err)
		return
	}
	logger.Log.Infof("wrote %d feature rows to %s", len(rows), path)
}
