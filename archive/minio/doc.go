// Package minio reads IMDF archives from MinIO and other S3-compatible
// object stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//
//	r := imdfminio.NewReader(client, "imdf", "venues/")
//	v, err := imdf.Decode(ctx, "airport", imdf.WithReader(r))
//
// # Compatibility
//
// Works with MinIO, Ceph RGW, SeaweedFS and any other store that speaks the
// S3 object API.
package minio
