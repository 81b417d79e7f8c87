package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"nhtsa-pipeline/internal/model"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	NHTSA  NHTSAConfig  `yaml:"nhtsa"`
	AWS    AWSConfig    `yaml:"aws"`
	Train  TrainConfig  `yaml:"train"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DBConfig configures the run-tracking database.
type DBConfig struct {
	Path string `yaml:"path"`
}

// NHTSAConfig configures the upstream API client.
type NHTSAConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout as a duration.
func (n NHTSAConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// AWSConfig holds AWS settings shared by the collaborators.
type AWSConfig struct {
	Region string `yaml:"region"`
}

// TrainConfig holds training-job settings plus the default run parameters.
type TrainConfig struct {
	BucketName string `yaml:"bucket_name"`
	ModelYear  int    `yaml:"model_year"`
	Runtime    int    `yaml:"runtime"` // seconds
	Instance   string `yaml:"instance"`
	RoleARN    string `yaml:"role_arn"`
	Image      string `yaml:"image"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DB.Path == "" {
		c.DB.Path = "pipeline.db"
	}
	if c.NHTSA.BaseURL == "" {
		c.NHTSA.BaseURL = "https://api.nhtsa.gov"
	}
	if c.NHTSA.RequestsPerSecond == 0 {
		c.NHTSA.RequestsPerSecond = 5
	}
	if c.NHTSA.TimeoutSeconds == 0 {
		c.NHTSA.TimeoutSeconds = 30
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-west-2"
	}
	if c.Train.BucketName == "" {
		c.Train.BucketName = model.DefaultBucketName
	}
	if c.Train.ModelYear == 0 {
		c.Train.ModelYear = model.DefaultModelYear
	}
	if c.Train.Runtime == 0 {
		c.Train.Runtime = model.DefaultTrainRuntime
	}
	if c.Train.Instance == "" {
		c.Train.Instance = model.DefaultTrainInstance
	}
	if c.Train.Image == "" {
		c.Train.Image = "683313688378.dkr.ecr.us-west-2.amazonaws.com/sagemaker-sklearn:0.23-1-cpu-py3"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// RunParams builds the default run parameters from the training section.
func (c *Config) RunParams() model.RunParams {
	return model.RunParams{
		BucketName:    c.Train.BucketName,
		ModelYear:     c.Train.ModelYear,
		TrainRuntime:  c.Train.Runtime,
		TrainInstance: c.Train.Instance,
	}
}
