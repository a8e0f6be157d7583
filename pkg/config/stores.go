package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/marmos91/stackhaus/internal/objectstore"
	"github.com/marmos91/stackhaus/internal/objectstore/fsstore"
	"github.com/marmos91/stackhaus/internal/objectstore/s3store"
	"github.com/marmos91/stackhaus/internal/stackerr"
)

// CreateObjectStore creates the ObjectStore backend the stack writer
// and reader run against, from the S3 section of the configuration.
func CreateObjectStore(ctx context.Context, cfg S3Config) (objectstore.ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store requires s3.bucket to be set")
	}

	return s3store.NewFromConfig(ctx, s3store.Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		ForcePathStyle:  cfg.ForcePathStyle,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
}

// OpenPath resolves a CLI path argument of the form "s3://<bucket>/<prefix>/"
// or "file://<absolute-path>/" into an ObjectStore and the key prefix stacks
// live under. The S3 scheme borrows region/endpoint/credentials from cfg and
// overrides only the bucket with the URL's host; the file scheme ignores cfg
// entirely and roots the store at the URL's path.
func OpenPath(ctx context.Context, path string, cfg S3Config) (objectstore.ObjectStore, string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", stackerr.Wrap(stackerr.ConfigError, err, fmt.Sprintf("parse path %q", path))
	}

	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return nil, "", stackerr.Newf(stackerr.ConfigError, "s3 path %q has no bucket", path)
		}
		bucketCfg := cfg
		bucketCfg.Bucket = u.Host
		store, err := CreateObjectStore(ctx, bucketCfg)
		if err != nil {
			return nil, "", err
		}
		return store, strings.TrimPrefix(u.Path, "/"), nil

	case "file":
		store, err := fsstore.New(u.Path)
		if err != nil {
			return nil, "", stackerr.Wrap(stackerr.IOError, err, fmt.Sprintf("open file store %q", u.Path))
		}
		return store, "", nil

	default:
		return nil, "", stackerr.Newf(stackerr.InvalidArgument, "unknown url scheme %q in path %q", u.Scheme, path)
	}
}
