package training

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

type fakeSageMaker struct {
	inputs []*sagemaker.CreateTrainingJobInput
	arn    string
	err    error
}

func (f *fakeSageMaker) CreateTrainingJob(ctx context.Context, params *sagemaker.CreateTrainingJobInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateTrainingJobOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sagemaker.CreateTrainingJobOutput{TrainingJobArn: aws.String(f.arn)}, nil
}

func testSpec() JobSpec {
	return JobSpec{
		Name:              "LogisticRegressionJob-20260301120000",
		TrainingImage:     "example.test/sklearn:latest",
		RoleARN:           "arn:aws:iam::123456789012:role/pipeline",
		DataS3URI:         "s3://nhtsa-analytics/data/train_data.csv",
		OutputS3Path:      "s3://nhtsa-analytics/models/",
		ScriptS3URI:       "s3://nhtsa-analytics/scripts/train_logistic_regression.py",
		InstanceType:      "ml.m5.large",
		MaxRuntimeSeconds: 600,
		Metrics: []MetricDefinition{
			{Name: "accuracy", Regex: `accuracy=([0-9\.]+)`},
			{Name: "precision", Regex: `precision=([0-9\.]+)`},
		},
	}
}

func TestSubmit(t *testing.T) {
	api := &fakeSageMaker{arn: "arn:aws:sagemaker:us-west-2:123456789012:training-job/test"}
	sub := &SageMakerSubmitter{api: api}

	arn, err := sub.Submit(context.Background(), testSpec())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if arn != api.arn {
		t.Errorf("arn = %q, want %q", arn, api.arn)
	}
	if len(api.inputs) != 1 {
		t.Fatalf("got %d CreateTrainingJob calls, want 1", len(api.inputs))
	}

	in := api.inputs[0]
	if aws.ToString(in.TrainingJobName) != "LogisticRegressionJob-20260301120000" {
		t.Errorf("job name = %q", aws.ToString(in.TrainingJobName))
	}
	if aws.ToString(in.RoleArn) != "arn:aws:iam::123456789012:role/pipeline" {
		t.Errorf("role = %q", aws.ToString(in.RoleArn))
	}

	algo := in.AlgorithmSpecification
	if aws.ToString(algo.TrainingImage) != "example.test/sklearn:latest" {
		t.Errorf("image = %q", aws.ToString(algo.TrainingImage))
	}
	if algo.TrainingInputMode != types.TrainingInputModeFile {
		t.Errorf("input mode = %v", algo.TrainingInputMode)
	}
	if len(algo.MetricDefinitions) != 2 {
		t.Fatalf("got %d metric definitions, want 2", len(algo.MetricDefinitions))
	}
	if aws.ToString(algo.MetricDefinitions[0].Name) != "accuracy" ||
		aws.ToString(algo.MetricDefinitions[0].Regex) != `accuracy=([0-9\.]+)` {
		t.Errorf("accuracy metric = %+v", algo.MetricDefinitions[0])
	}

	if got := in.HyperParameters["sagemaker_program"]; got != "train_logistic_regression.py" {
		t.Errorf("sagemaker_program = %q", got)
	}
	if got := in.HyperParameters["sagemaker_submit_directory"]; got != "s3://nhtsa-analytics/scripts/train_logistic_regression.py" {
		t.Errorf("sagemaker_submit_directory = %q", got)
	}

	if len(in.InputDataConfig) != 1 {
		t.Fatalf("got %d channels, want 1", len(in.InputDataConfig))
	}
	ch := in.InputDataConfig[0]
	if aws.ToString(ch.ChannelName) != "train" || aws.ToString(ch.ContentType) != "text/csv" {
		t.Errorf("channel = %+v", ch)
	}
	src := ch.DataSource.S3DataSource
	if aws.ToString(src.S3Uri) != "s3://nhtsa-analytics/data/train_data.csv" {
		t.Errorf("data uri = %q", aws.ToString(src.S3Uri))
	}
	if src.S3DataType != types.S3DataTypeS3Prefix || src.S3DataDistributionType != types.S3DataDistributionFullyReplicated {
		t.Errorf("data source = %+v", src)
	}

	if aws.ToString(in.OutputDataConfig.S3OutputPath) != "s3://nhtsa-analytics/models/" {
		t.Errorf("output path = %q", aws.ToString(in.OutputDataConfig.S3OutputPath))
	}

	rc := in.ResourceConfig
	if rc.InstanceType != types.TrainingInstanceType("ml.m5.large") || aws.ToInt32(rc.InstanceCount) != 1 {
		t.Errorf("resource config = %+v", rc)
	}
	if aws.ToInt32(in.StoppingCondition.MaxRuntimeInSeconds) != 600 {
		t.Errorf("max runtime = %d", aws.ToInt32(in.StoppingCondition.MaxRuntimeInSeconds))
	}
}

func TestSubmitError(t *testing.T) {
	cause := errors.New("quota exceeded")
	sub := &SageMakerSubmitter{api: &fakeSageMaker{err: cause}}

	_, err := sub.Submit(context.Background(), testSpec())
	if !errors.Is(err, cause) {
		t.Fatalf("Submit() error = %v, want wrapped %v", err, cause)
	}
}
