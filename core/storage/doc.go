// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client, which speaks to AWS S3, Google Cloud Storage
// (through its XML interoperability API) and self-hosted MinIO alike.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Public Read Grants
//
// Per-object public read access is expressed as a bucket policy statement that
// grants s3:GetObject on exactly one object to the anonymous principal. Buckets
// whose backend cannot store such statements are reported as uniform access,
// and ErrUniformAccess is returned by GrantPublicRead and RevokePublicRead.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	access, err := storage.ObjectAccess(ctx, client, "images", "ubuntu.ova")
//	if !access.Public {
//	    err = storage.GrantPublicRead(ctx, client, "images", "ubuntu.ova")
//	}
package storage
