// Package s3 reads IMDF archives stored in Amazon S3.
//
// # Usage
//
//	r, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("venues/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	v, err := imdf.Decode(ctx, "airport", imdf.WithReader(r))
//
// # Features
//
//   - Concurrent ranged downloads via the S3 transfer manager
//   - HeadObject probe to size buffers and detect missing files
//   - Configurable prefix for multi-tenant buckets
//   - Custom endpoints and path-style addressing for S3-compatible stores
package s3
