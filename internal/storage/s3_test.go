package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &s3.PutObjectOutput{}, nil
}

func TestPut(t *testing.T) {
	api := &fakeS3{}
	st := &S3Storage{api: api}

	err := st.Put(context.Background(), "nhtsa-analytics", "data/train.csv", "text/csv", []byte("make,model\n"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if len(api.inputs) != 1 {
		t.Fatalf("got %d PutObject calls, want 1", len(api.inputs))
	}

	in := api.inputs[0]
	if aws.ToString(in.Bucket) != "nhtsa-analytics" {
		t.Errorf("bucket = %q", aws.ToString(in.Bucket))
	}
	if aws.ToString(in.Key) != "data/train.csv" {
		t.Errorf("key = %q", aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "text/csv" {
		t.Errorf("content type = %q", aws.ToString(in.ContentType))
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "make,model\n" {
		t.Errorf("body = %q", body)
	}
}

func TestPutError(t *testing.T) {
	cause := errors.New("access denied")
	st := &S3Storage{api: &fakeS3{err: cause}}

	err := st.Put(context.Background(), "bucket", "key", "text/csv", nil)
	if !errors.Is(err, cause) {
		t.Fatalf("Put() error = %v, want wrapped %v", err, cause)
	}
	if !strings.Contains(err.Error(), "s3://bucket/key") {
		t.Errorf("error does not name the object: %v", err)
	}
}
