package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/attribution-engine/internal/domain"
)

type fakeS3 struct {
	keys   []string
	bodies [][]byte
	fail   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.keys = append(f.keys, *in.Key)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func testDoc() *domain.ResultDocument {
	return &domain.ResultDocument{
		ID:        "doc-42",
		ModelName: domain.ModelName,
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Result: &domain.AttributionResult{
			Combined: domain.AttributionMap{"tp-1": 500},
		},
		Metadata: domain.DocumentMetadata{ModelType: "b2b_comprehensive"},
	}
}

func TestS3ArchiveWritesDatedKey(t *testing.T) {
	fake := &fakeS3{}
	archive := &S3ResultArchive{client: fake, bucket: "results", prefix: "attribution-results"}

	if err := archive.WriteResult(context.Background(), testDoc()); err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}
	if len(fake.keys) != 1 {
		t.Fatalf("put %d objects, want 1", len(fake.keys))
	}
	if fake.keys[0] != "attribution-results/2025/06/15/doc-42.json" {
		t.Errorf("key = %s", fake.keys[0])
	}

	var stored domain.ResultDocument
	if err := json.Unmarshal(fake.bodies[0], &stored); err != nil {
		t.Fatalf("stored body is not valid JSON: %v", err)
	}
	if stored.ID != "doc-42" || stored.Result.Combined["tp-1"] != 500 {
		t.Errorf("stored doc mismatch: %+v", stored)
	}
}

func TestS3ArchiveWrapsError(t *testing.T) {
	fake := &fakeS3{fail: errors.New("access denied")}
	archive := &S3ResultArchive{client: fake, bucket: "results", prefix: "attribution-results"}

	err := archive.WriteResult(context.Background(), testDoc())
	if err == nil || !strings.Contains(err.Error(), "archiving result to s3") {
		t.Errorf("WriteResult() error = %v", err)
	}
}

type recordingWriter struct {
	count int
	fail  error
}

func (r *recordingWriter) WriteResult(context.Context, *domain.ResultDocument) error {
	if r.fail != nil {
		return r.fail
	}
	r.count++
	return nil
}

func TestFanoutWritesAllSinks(t *testing.T) {
	a, b := &recordingWriter{}, &recordingWriter{}
	w := NewFanoutWriter(a, nil, b)

	if err := w.WriteResult(context.Background(), testDoc()); err != nil {
		t.Fatalf("WriteResult() error: %v", err)
	}
	if a.count != 1 || b.count != 1 {
		t.Errorf("sink counts = %d, %d, want 1, 1", a.count, b.count)
	}
}

func TestFanoutContinuesPastFailure(t *testing.T) {
	failed := &recordingWriter{fail: errors.New("boom")}
	ok := &recordingWriter{}
	w := NewFanoutWriter(failed, ok)

	err := w.WriteResult(context.Background(), testDoc())
	if err == nil {
		t.Error("expected first sink error to propagate")
	}
	if ok.count != 1 {
		t.Errorf("second sink count = %d, want 1", ok.count)
	}
}
