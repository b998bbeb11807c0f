/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package sink

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3SnapshotBackend stores checkpoints as objects under a bucket
// prefix, one PutObject per publish. Client construction mirrors
// storage.S3Storage.ensureOpen's lazy-config-then-client pattern.
type S3SnapshotBackend struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Prefix          string
	ForcePathStyle  bool

	mu     sync.Mutex
	client *s3.Client
}

func (b *S3SnapshotBackend) ensureOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return nil
	}
	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if b.Region != "" {
		opts = append(opts, config.WithRegion(b.Region))
	}
	if b.AccessKeyID != "" && b.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.AccessKeyID, b.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("s3 snapshot backend: %w", err)
	}
	var s3Opts []func(*s3.Options)
	if b.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(b.Endpoint) })
	}
	if b.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}
	b.client = s3.NewFromConfig(cfg, s3Opts...)
	return nil
}

func (b *S3SnapshotBackend) put(key string, data []byte) error {
	if err := b.ensureOpen(); err != nil {
		return err
	}
	prefixed := key
	if b.Prefix != "" {
		prefixed = b.Prefix + "/" + key
	}
	_, err := b.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(prefixed),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (b *S3SnapshotBackend) WriteInterim(sessionID string, seq int, raw []byte) error {
	compressed, err := compressLz4(raw)
	if err != nil {
		return err
	}
	return b.put(interimKey(sessionID, seq), compressed)
}

func (b *S3SnapshotBackend) WriteFinal(sessionID string, raw []byte) error {
	compressed, err := compressXz(raw)
	if err != nil {
		return err
	}
	return b.put(finalKey(sessionID), compressed)
}

func (b *S3SnapshotBackend) Close() error { return nil }
