// Package minio stores sequence archives through the MinIO client.
//
// It works against MinIO and other S3-compatible services such as Ceph,
// SeaweedFS or Garage without pulling in the AWS SDK. Archives are written
// with the content type application/vnd.arrayseq.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "sequences/",
//	    minioblob.WithPartSize(32<<20),
//	)
//	err = seq.SaveBlob(ctx, store, "streamlines.asq")
//	loaded, err := arrayseq.LoadBlob(ctx, store, "streamlines.asq")
//
// TLS and region are configured on the client itself.
package minio
