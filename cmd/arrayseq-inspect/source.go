package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/arrayseq"
	"github.com/hupe1980/arrayseq/blobstore"
	miniostore "github.com/hupe1980/arrayseq/blobstore/minio"
	s3store "github.com/hupe1980/arrayseq/blobstore/s3"
)

var (
	s3Region      = flag.String("s3-region", "", "region for s3:// archives (default: AWS config chain)")
	s3Endpoint    = flag.String("s3-endpoint", "", "custom endpoint for s3:// archives")
	minioEndpoint = flag.String("minio-endpoint", "localhost:9000", "endpoint for minio:// archives; credentials come from MINIO_ROOT_USER/MINIO_ROOT_PASSWORD")
	minioSecure   = flag.Bool("minio-tls", false, "use TLS for minio:// archives")
)

// splitSource splits "scheme://bucket/key". Plain paths have no scheme.
func splitSource(arg string) (scheme, bucket, key string) {
	scheme, rest, ok := strings.Cut(arg, "://")
	if !ok {
		return "", "", arg
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return scheme, bucket, key
}

// openStore returns the blob store behind scheme.
func openStore(ctx context.Context, scheme, bucket string) (blobstore.BlobStore, error) {
	switch scheme {
	case "s3":
		var opts []s3store.Option
		if *s3Region != "" {
			opts = append(opts, s3store.WithRegion(*s3Region))
		}
		if *s3Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(*s3Endpoint))
		}
		return s3store.New(ctx, bucket, opts...)
	case "minio":
		client, err := minio.New(*minioEndpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: *minioSecure,
		})
		if err != nil {
			return nil, err
		}
		return miniostore.NewStore(client, bucket, ""), nil
	}
	return nil, fmt.Errorf("unsupported scheme %q", scheme)
}

// load reads a local archive through mmap and a remote one through its store.
func load(ctx context.Context, arg string, opts []arrayseq.Option) (*arrayseq.Sequence, error) {
	scheme, bucket, key := splitSource(arg)
	if scheme == "" || scheme == "file" {
		return arrayseq.OpenFile(strings.TrimPrefix(arg, "file://"), opts...)
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("want %s://bucket/key", scheme)
	}
	store, err := openStore(ctx, scheme, bucket)
	if err != nil {
		return nil, err
	}
	return arrayseq.LoadBlob(ctx, store, key, opts...)
}
