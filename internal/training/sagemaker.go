package training

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// MetricDefinition names a regular expression to extract a metric from
// training job output.
type MetricDefinition struct {
	Name  string
	Regex string
}

// JobSpec describes one training job submission.
type JobSpec struct {
	Name              string
	TrainingImage     string
	RoleARN           string
	DataS3URI         string
	OutputS3Path      string
	ScriptS3URI       string
	InstanceType      string
	MaxRuntimeSeconds int
	Metrics           []MetricDefinition
}

// Submitter is the narrow contract for the training collaborator: submit a
// job, get back its handle. Fire and forget, no completion polling.
type Submitter interface {
	Submit(ctx context.Context, spec JobSpec) (string, error)
}

// sageMakerAPI is the slice of the SageMaker client the submitter uses.
type sageMakerAPI interface {
	CreateTrainingJob(ctx context.Context, params *sagemaker.CreateTrainingJobInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateTrainingJobOutput, error)
}

// SageMakerSubmitter implements Submitter on Amazon SageMaker.
type SageMakerSubmitter struct {
	api sageMakerAPI
}

// NewSageMakerSubmitter builds the submitter from a resolved AWS config.
func NewSageMakerSubmitter(cfg aws.Config) *SageMakerSubmitter {
	return &SageMakerSubmitter{api: sagemaker.NewFromConfig(cfg)}
}

var _ Submitter = (*SageMakerSubmitter)(nil)

func (s *SageMakerSubmitter) Submit(ctx context.Context, spec JobSpec) (string, error) {
	metrics := make([]types.MetricDefinition, 0, len(spec.Metrics))
	for _, m := range spec.Metrics {
		metrics = append(metrics, types.MetricDefinition{
			Name:  aws.String(m.Name),
			Regex: aws.String(m.Regex),
		})
	}

	input := &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(spec.Name),
		RoleArn:         aws.String(spec.RoleARN),
		AlgorithmSpecification: &types.AlgorithmSpecification{
			TrainingImage:     aws.String(spec.TrainingImage),
			TrainingInputMode: types.TrainingInputModeFile,
			MetricDefinitions: metrics,
		},
		HyperParameters: map[string]string{
			"sagemaker_program":          "train_logistic_regression.py",
			"sagemaker_submit_directory": spec.ScriptS3URI,
		},
		InputDataConfig: []types.Channel{
			{
				ChannelName: aws.String("train"),
				ContentType: aws.String("text/csv"),
				DataSource: &types.DataSource{
					S3DataSource: &types.S3DataSource{
						S3DataType:             types.S3DataTypeS3Prefix,
						S3Uri:                  aws.String(spec.DataS3URI),
						S3DataDistributionType: types.S3DataDistributionFullyReplicated,
					},
				},
			},
		},
		OutputDataConfig: &types.OutputDataConfig{
			S3OutputPath: aws.String(spec.OutputS3Path),
		},
		ResourceConfig: &types.ResourceConfig{
			InstanceType:   types.TrainingInstanceType(spec.InstanceType),
			InstanceCount:  aws.Int32(1),
			VolumeSizeInGB: aws.Int32(10),
		},
		StoppingCondition: &types.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int32(int32(spec.MaxRuntimeSeconds)),
		},
	}

	out, err := s.api.CreateTrainingJob(ctx, input)
	if err != nil {
		return "", fmt.Errorf("create training job %s: %w", spec.Name, err)
	}
	return aws.ToString(out.TrainingJobArn), nil
}
