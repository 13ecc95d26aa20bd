// Package storage provides result-document persistence beyond the primary
// database: an S3 archive for long-term retention and a fan-out writer that
// feeds several sinks from one calculate call.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/attribution-engine/internal/domain"
)

// s3PutAPI is the slice of the S3 client the archive uses.
type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ResultArchive writes attribution result documents to an S3 bucket as
// dated JSON objects. It implements attribution.ResultWriter.
type S3ResultArchive struct {
	client s3PutAPI
	bucket string
	prefix string
}

// NewS3ResultArchive creates an archive writer using the default AWS
// credential chain. An optional shared-config profile may be given.
func NewS3ResultArchive(ctx context.Context, bucket, region, profile string) (*S3ResultArchive, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3ResultArchive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: "attribution-results",
	}, nil
}

// key lays results out by calculation date so lifecycle rules can expire old
// partitions wholesale.
func (a *S3ResultArchive) key(doc *domain.ResultDocument) string {
	return fmt.Sprintf("%s/%s/%s.json", a.prefix, doc.CreatedAt.UTC().Format("2006/01/02"), doc.ID)
}

// WriteResult archives one result document.
func (a *S3ResultArchive) WriteResult(ctx context.Context, doc *domain.ResultDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling result document: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(doc)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archiving result to s3: %w", err)
	}
	return nil
}
