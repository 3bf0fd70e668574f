// Package s3 implements the media.Storage interface for Amazon S3 and
// S3-compatible services (MinIO, Wasabi, DigitalOcean Spaces, ...).
//
// Files are uploaded under policy-generated keys, never overwriting an
// existing object, and are served through presigned GET URLs with a
// configurable validity (one hour by default):
//
//	store, err := s3.New(ctx, s3.Config{
//		Bucket: "media",
//		Region: "us-east-1",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fileKey, err := store.StoreFile(ctx, header.Filename, file)
//	...
//	url, err := store.FileURL(ctx, fileKey, "") // rootURL ignored, URL is signed
//
// Connection parameters are passed through to the SDK untouched; for MinIO
// and friends set Endpoint and ForcePathStyle. For tests, inject mocks with
// WithS3Client, WithPresigner, and WithPaginatorFactory.
package s3
