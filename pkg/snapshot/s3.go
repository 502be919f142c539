package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/ngutils"
)

// maxSnapshotSize bounds how much of an object Load will read.
const maxSnapshotSize = 1 << 20

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores snapshots as JSON objects in an S3 bucket.
//
// Example usage:
//
//	client, _ := snapshot.NewS3Client(ctx, "eu-west-1", "", false)
//	store := snapshot.NewS3Store(client, "my-bucket", "models/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store writing objects named prefix + clientID + ".json".
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewS3Client builds an S3 client from the default AWS credential chain.
// endpoint overrides the service endpoint, for S3-compatible stores.
func NewS3Client(ctx context.Context, region, endpoint string, usePathStyle bool) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("N010").WithDetail("loading AWS config").Wrap(err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = usePathStyle
	}), nil
}

func (s *S3Store) key(clientID string) string {
	return s.prefix + clientID + ".json"
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, clientID string, m ngutils.Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(clientID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"client-id":  clientID,
			"saved-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("N011").WithDetail("s3://" + s.bucket + "/" + s.key(clientID)).Wrap(err)
	}
	return nil
}

// Load implements Store.
func (s *S3Store) Load(ctx context.Context, clientID string) (ngutils.Model, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clientID)),
	})
	if err != nil {
		if isNotFound(err) {
			return ngutils.Model{}, false, nil
		}
		return ngutils.Model{}, false, errors.New("N010").WithDetail("s3://" + s.bucket + "/" + s.key(clientID)).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSnapshotSize))
	if err != nil {
		return ngutils.Model{}, false, errors.New("N010").Wrap(err)
	}

	m, err := Decode(data)
	if err != nil {
		return ngutils.Model{}, false, err
	}
	return m, true, nil
}

// Delete implements Store.
func (s *S3Store) Delete(ctx context.Context, clientID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(clientID)),
	})
	if err != nil && !isNotFound(err) {
		return errors.New("N011").WithDetail("delete " + s.key(clientID)).Wrap(err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
