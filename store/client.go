// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// MaxRenameSize is the single-operation copy limit enforced before a PUT
// copy-source rename is attempted, per §4.7.
const MaxRenameSize = 5 * 1024 * 1024 * 1024 // 5 GiB

// Client is the concrete realization of §6.4's connection-pool / HTTP-
// connection / directory-listing-helper contracts, wrapping a single
// *s3.S3 client the way rclone's s3 backend does.
type Client struct {
	S3           *s3.S3
	Bucket       string
	KeyPrefix    string
	StorageClass string
}

// New builds a Client from an AWS session, following the session-then-
// service-client construction rclone's s3 backend uses.
func New(sess *session.Session, bucket, keyPrefix, storageClass string) *Client {
	return &Client{
		S3:           s3.New(sess),
		Bucket:       bucket,
		KeyPrefix:    keyPrefix,
		StorageClass: storageClass,
	}
}

func (c *Client) objectKey(fullpath string) string {
	if c.KeyPrefix == "" {
		return fullpath
	}
	return strings.TrimSuffix(c.KeyPrefix, "/") + "/" + fullpath
}

// Head issues HEAD /{key}, normalizing the headers named in §6.2.
func (c *Client) Head(ctx context.Context, fullpath string) (Attrs, error) {
	out, err := c.S3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(fullpath)),
	})
	if err != nil {
		return Attrs{}, translateAWSError(err)
	}

	a := Attrs{}
	if out.ContentLength != nil {
		a.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		a.LastModified = *out.LastModified
	}
	if out.ETag != nil {
		a.ETag = strings.Trim(*out.ETag, `"`)
	}
	if out.VersionId != nil {
		a.VersionID = *out.VersionId
	}
	if out.ContentType != nil {
		a.ContentType = *out.ContentType
		a.IsDirectoryMarker = a.ContentType == DirectoryContentType
	}
	if mode, ok := out.Metadata["Mode"]; ok && mode != nil {
		// x-amz-meta-mode carries the decimal POSIX mode, per §6.2.
		if parsed, err := strconv.ParseUint(*mode, 10, 32); err == nil {
			a.Mode = os.FileMode(parsed & 0777)
			a.HasMode = true
		}
	}
	return a, nil
}

// Delete issues DELETE /{key}.
func (c *Client) Delete(ctx context.Context, fullpath string) error {
	_, err := c.S3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(c.objectKey(fullpath)),
	})
	return translateAWSError(err)
}

// PutCopy issues the copy-then-delete rename's copy half: a PUT to newPath
// carrying x-amz-copy-source pointing at oldPath and the configured storage
// class, per §4.7 and §6.2.
func (c *Client) PutCopy(ctx context.Context, oldPath, newPath string) error {
	copySource := c.Bucket + "/" + c.objectKey(oldPath)

	in := &s3.CopyObjectInput{
		Bucket:     aws.String(c.Bucket),
		Key:        aws.String(c.objectKey(newPath)),
		CopySource: aws.String(copySource),
	}
	if c.StorageClass != "" {
		in.StorageClass = aws.String(c.StorageClass)
	}

	out, err := c.S3.CopyObjectWithContext(ctx, in)
	if err != nil {
		return translateAWSError(err)
	}
	// A 200 OK copy response can still carry an error body; treat an absent
	// or empty ETag in CopyObjectResult as failure, per §4.7's note and the
	// decision recorded for this open question in SPEC_FULL.md §9.
	if out.CopyObjectResult == nil || out.CopyObjectResult.ETag == nil || *out.CopyObjectResult.ETag == "" {
		return fmt.Errorf("store: copy to %q reported success with no copy result", newPath)
	}
	return nil
}

// List issues a paginated listing under dirPath, delimited at "/" so that
// immediate children are returned as either objects or common prefixes
// (subdirectories), per §6.2's "(basename, size, last_modified, type)"
// contract.
func (c *Client) List(ctx context.Context, dirPath, continuationToken string) (Page, error) {
	prefix := c.objectKey(dirPath)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	in := &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	if continuationToken != "" {
		in.ContinuationToken = aws.String(continuationToken)
	}

	out, err := c.S3.ListObjectsV2WithContext(ctx, in)
	if err != nil {
		return Page{}, translateAWSError(err)
	}

	page := Page{}
	for _, cp := range out.CommonPrefixes {
		if cp.Prefix == nil {
			continue
		}
		page.Entries = append(page.Entries, ListEntry{
			Basename: basenameOfPrefix(*cp.Prefix, prefix),
			IsPrefix: true,
		})
	}
	for _, obj := range out.Contents {
		if obj.Key == nil || *obj.Key == prefix {
			continue // the directory marker object itself, if any
		}
		e := ListEntry{Basename: strings.TrimPrefix(*obj.Key, prefix)}
		if obj.Size != nil {
			e.Size = *obj.Size
		}
		if obj.LastModified != nil {
			e.LastModified = *obj.LastModified
		}
		page.Entries = append(page.Entries, e)
	}

	if out.IsTruncated != nil {
		page.Truncated = *out.IsTruncated
	}
	if out.NextContinuationToken != nil {
		page.NextContinuationToken = *out.NextContinuationToken
	}
	return page, nil
}

func basenameOfPrefix(prefix, parentPrefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(prefix, parentPrefix), "/")
}

// translateAWSError reduces an awserr.Error to a plain error carrying the
// AWS code and message; it wraps no sentinel from tree/errors.go. The tree
// treats a failed HEAD probe as absence and passes other store errors up
// unchanged, and fsadapter maps those to EIO.
func translateAWSError(err error) error {
	if err == nil {
		return nil
	}
	if aerr, ok := err.(awserr.Error); ok {
		return fmt.Errorf("store: %s: %s", aerr.Code(), aerr.Message())
	}
	return err
}
