// Package s3 stores sequence archives in Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("sequences/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = seq.SaveBlob(ctx, store, "streamlines.asq")
//
// Reads are ranged GETs. Put sends a precomputed CRC32C so S3 rejects a
// corrupted upload; streaming writes from Create go through the multipart
// uploader and are discarded by blobstore.Abort. WithEndpoint targets
// S3-compatible services such as LocalStack.
package s3
