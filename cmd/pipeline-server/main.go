package main

import (
	"context"
	"flag"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"nhtsa-pipeline/internal/api"
	"nhtsa-pipeline/internal/api/handler"
	"nhtsa-pipeline/internal/config"
	"nhtsa-pipeline/internal/nhtsa"
	"nhtsa-pipeline/internal/pipeline"
	"nhtsa-pipeline/internal/storage"
	"nhtsa-pipeline/internal/store"
	"nhtsa-pipeline/internal/training"
	"nhtsa-pipeline/pkg/logger"
	"nhtsa-pipeline/pkg/router"

	_ "nhtsa-pipeline/docs"
)

// @title NHTSA Pipeline API
// @version 1.0
// @description Trigger and inspect NHTSA complaint/recall training-data pipeline runs.
// @BasePath /api/v1
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Fatalf("load config: %v", err)
		}
		logger.Log.Warnf("config file %s not found, using defaults", *cfgPath)
		cfg = config.Default()
	}
	logger.Init(cfg.Log.Level)

	if err := store.InitDB(cfg.DB.Path); err != nil {
		logger.Log.Fatalf("init database: %v", err)
	}

	runner, err := buildRunner(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatalf("build pipeline runner: %v", err)
	}

	r := router.New()
	api.RegisterRoutes(r, handler.NewRunHandler(runner, cfg.RunParams()))

	if err := r.Start(cfg.Server.Addr); err != nil {
		logger.Log.Fatalf("server: %v", err)
	}
}

func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, err
	}

	client := nhtsa.NewClient(cfg.NHTSA.BaseURL, cfg.NHTSA.RequestsPerSecond, cfg.NHTSA.Timeout())

	return &pipeline.Runner{
		Fetcher:       client,
		Storage:       storage.NewS3Storage(awsCfg),
		Training:      training.NewSageMakerSubmitter(awsCfg),
		Tracker:       store.RunTracker{},
		TrainingImage: cfg.Train.Image,
		RoleARN:       cfg.Train.RoleARN,
	}, nil
}
