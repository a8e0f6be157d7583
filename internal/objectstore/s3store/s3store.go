// Package s3store adapts Amazon S3 and S3-compatible object stores to the
// objectstore.ObjectStore capability set.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// Config holds the connection parameters for an S3-backed store.
type Config struct {
	Bucket string

	// Region is the AWS region (optional, uses the SDK default chain
	// if empty).
	Region string

	// Endpoint overrides the default S3 endpoint, for S3-compatible
	// services (MinIO, Localstack, Ceph RGW).
	Endpoint string

	// ForcePathStyle forces path-style addressing, required by most
	// self-hosted S3-compatible services.
	ForcePathStyle bool

	// AccessKeyID and SecretAccessKey, when both set, are used as static
	// credentials instead of the SDK's default credential chain. Left
	// empty, NewFromConfig falls back to the default chain (env vars,
	// shared config, instance role).
	AccessKeyID     string
	SecretAccessKey string
}

// Store is an S3-backed ObjectStore.
type Store struct {
	client *s3.Client
	bucket string
}

var _ objectstore.ObjectStore = (*Store)(nil)

// New wraps an existing S3 client.
func New(client *s3.Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket}
}

// NewFromConfig builds an S3 client from cfg and the default AWS
// credential chain.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.ConfigError, err, "load AWS config")
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func (s *Store) List(ctx context.Context, prefix string) (objectstore.EntryIterator, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	return &pageIterator{ctx: ctx, paginator: paginator}, nil
}

func (s *Store) RangeRead(ctx context.Context, key string, rng objectstore.Range) ([]byte, error) {
	r, err := s.StreamReader(ctx, key, rng)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "read s3 object body")
	}
	return body, nil
}

func (s *Store) StreamReader(ctx context.Context, key string, rng objectstore.Range) (objectstore.Reader, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if header := rangeHeader(rng); header != "" {
		input.Range = aws.String(header)
	}

	resp, err := s.client.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("object %q not found", key))
		}
		return nil, stackerr.Wrap(stackerr.IOError, err, "s3 get object")
	}
	return &reader{body: resp.Body}, nil
}

func (s *Store) StreamWriter(ctx context.Context, key string) (objectstore.Writer, error) {
	// S3 PutObject has no append mode, so the writer buffers in memory
	// and uploads in full on Close. Large stacks should prefer a
	// multipart-upload-backed writer; the buffered form is adequate for
	// the stack sizes this module targets and keeps the adapter simple.
	return &writer{ctx: ctx, client: s.client, bucket: s.bucket, key: key}, nil
}

func (s *Store) Metadata(ctx context.Context, key string) (objectstore.Entry, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return objectstore.Entry{}, stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("object %q not found", key))
		}
		return objectstore.Entry{}, stackerr.Wrap(stackerr.IOError, err, "s3 head object")
	}

	e := objectstore.Entry{Name: key}
	if resp.ContentLength != nil {
		e.Size = *resp.ContentLength
	}
	if resp.LastModified != nil {
		e.LastModified = *resp.LastModified
	}
	return e, nil
}

func rangeHeader(rng objectstore.Range) string {
	if rng.Start == 0 && rng.End == 0 {
		return ""
	}
	if rng.End == 0 {
		return fmt.Sprintf("bytes=%d-", rng.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", rng.Start, rng.End-1)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") ||
		strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "404")
}

type reader struct {
	body io.ReadCloser
}

func (r *reader) Read(p []byte) (int, error) { return r.body.Read(p) }
func (r *reader) Close() error                { return r.body.Close() }

func (r *reader) ReadExact(buf []byte) error {
	_, err := io.ReadFull(r.body, buf)
	if err != nil {
		return stackerr.Wrap(stackerr.IOError, err, "short read")
	}
	return nil
}

type pageIterator struct {
	ctx       context.Context
	paginator *s3.ListObjectsV2Paginator
	page      []types.Object
	idx       int
	err       error
}

func (p *pageIterator) Next(ctx context.Context) bool {
	for p.idx >= len(p.page) {
		if !p.paginator.HasMorePages() {
			return false
		}
		out, err := p.paginator.NextPage(ctx)
		if err != nil {
			p.err = stackerr.Wrap(stackerr.IOError, err, "s3 list objects")
			return false
		}
		p.page = out.Contents
		p.idx = 0
	}
	p.idx++
	return true
}

func (p *pageIterator) Entry() objectstore.Entry {
	obj := p.page[p.idx-1]
	e := objectstore.Entry{Name: aws.ToString(obj.Key)}
	if obj.Size != nil {
		e.Size = *obj.Size
	}
	if obj.LastModified != nil {
		e.LastModified = *obj.LastModified
	}
	return e
}

func (p *pageIterator) Err() error { return p.err }

// writer buffers the whole object in memory and issues a single
// PutObject on Close, matching the single-shot append contract: nothing
// is visible to readers until Close returns.
type writer struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buf    []byte
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, stackerr.New(stackerr.IOError, "write to closed s3 writer")
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf),
	})
	if err != nil {
		return stackerr.Wrap(stackerr.CloseError, err, fmt.Sprintf("put object %q", w.key))
	}
	return nil
}
